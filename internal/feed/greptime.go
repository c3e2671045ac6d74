package feed

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	ingesterContext "github.com/GreptimeTeam/greptimedb-ingester-go/context"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"droneops-console/internal/telemetry"
)

// GreptimeArchiver archives received telemetry to GreptimeDB via the
// ingester client, so operators can query flight history after the fact.
type GreptimeArchiver struct {
	client *greptime.Client
	db     string
	log    *slog.Logger
}

// NewGreptimeArchiver connects to GreptimeDB and auto-creates the telemetry
// table if needed.
func NewGreptimeArchiver(endpoint, database string, logger *slog.Logger) (*GreptimeArchiver, error) {
	cfg := greptime.NewConfig(endpoint).WithDatabase(database)
	if host, portStr, err := net.SplitHostPort(endpoint); err == nil {
		if port, perr := strconv.Atoi(portStr); perr == nil {
			cfg = greptime.NewConfig(host).WithPort(port).WithDatabase(database)
		}
	}
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, err
	}

	if _, err := client.HealthCheck(context.Background()); err != nil {
		return nil, err
	}

	return &GreptimeArchiver{client: client, db: database, log: logger}, nil
}

// Archive inserts a single telemetry row.
func (w *GreptimeArchiver) Archive(row telemetry.TelemetryRow) error {
	return w.ArchiveBatch([]telemetry.TelemetryRow{row})
}

// ArchiveBatch inserts multiple telemetry rows. The table is auto-created on
// first write with a 30-day TTL, passed as an ingest hint.
func (w *GreptimeArchiver) ArchiveBatch(rows []telemetry.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}

	ctx := ingesterContext.New(context.Background(),
		ingesterContext.WithHint([]*ingesterContext.Hint{{Key: "ttl", Value: "30d"}}))

	tbl, err := table.New(telemetry.TelemetryTableName)
	if err != nil {
		return err
	}
	tbl.AddTagColumn("uav_id", types.STRING)
	tbl.AddFieldColumn("lat", types.FLOAT64)
	tbl.AddFieldColumn("lon", types.FLOAT64)
	tbl.AddFieldColumn("alt", types.FLOAT64)
	tbl.AddFieldColumn("battery", types.FLOAT64)
	tbl.AddFieldColumn("heading_deg", types.FLOAT64)
	tbl.AddFieldColumn("status", types.STRING)
	tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND)

	for _, r := range rows {
		if err := tbl.AddRow(r.UAVID, r.Lat, r.Lon, r.Alt, r.Battery, r.HeadingDeg, r.Status, r.Timestamp); err != nil {
			return err
		}
	}

	if _, err := w.client.Write(ctx, tbl); err != nil {
		w.log.Error("greptime archive failed", "rows", len(rows), "err", err)
		return err
	}
	return nil
}
