// Status server exposing console state over HTTP and a websocket feed.
package admin

import (
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	jsoniter "github.com/json-iterator/go"

	"droneops-console/internal/store"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

//go:embed templates/index.html
var content embed.FS

// StateSource is the slice of the store the status server needs.
type StateSource interface {
	Snapshot() store.Snapshot
	Subscribe(store.Listener)
}

// Server serves a JSON snapshot endpoint, a websocket feed pushing fresh
// state on every store change, and a small index page.
type Server struct {
	src      StateSource
	tpl      *template.Template
	log      *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.Mutex
	conns map[*websocket.Conn]chan store.Snapshot
}

// NewServer builds a status server subscribed to the store.
func NewServer(src StateSource, logger *slog.Logger) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	s := &Server{
		src:   src,
		tpl:   tpl,
		log:   logger,
		conns: make(map[*websocket.Conn]chan store.Snapshot),
	}
	src.Subscribe(s.broadcast)
	return s
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.Handler()}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	return srv.ListenAndServe()
}

type entryPayload struct {
	Kind  string `json:"kind"`
	UAVID string `json:"uav_id,omitempty"`
	Slot  int    `json:"slot"`
	Label string `json:"label,omitempty"`
}

type statePayload struct {
	Main          []entryPayload      `json:"main"`
	Spares        []entryPayload      `json:"spares"`
	Extra         []entryPayload      `json:"extra"`
	Selection     []string            `json:"selection"`
	SelectionInfo store.SelectionInfo `json:"selection_info"`
	Editor        store.MappingEditor `json:"editor"`
	FleetSize     int                 `json:"fleet_size"`
}

var kindNames = map[store.EntryKind]string{
	store.KindMapped:          "mapped",
	store.KindEmptySlot:       "empty_slot",
	store.KindSpare:           "spare",
	store.KindExtraDropTarget: "extra_drop_target",
}

func buildPayload(snap store.Snapshot) statePayload {
	lists := store.DisplayedIDLists(snap)
	p := statePayload{
		Main:          entryPayloads(lists.Main),
		Spares:        entryPayloads(lists.Spares),
		Extra:         entryPayloads(lists.Extra),
		SelectionInfo: store.DeriveSelectionInfo(lists, snap.Selection),
		Editor:        snap.Editor,
		FleetSize:     len(snap.Fleet),
	}
	p.Selection = make([]string, 0, len(snap.Selection))
	for id := range snap.Selection {
		p.Selection = append(p.Selection, id)
	}
	sort.Strings(p.Selection)
	return p
}

func entryPayloads(entries []store.ListEntry) []entryPayload {
	out := make([]entryPayload, len(entries))
	for i, e := range entries {
		out[i] = entryPayload{Kind: kindNames[e.Kind], UAVID: e.UAVID, Slot: e.Slot, Label: e.Label}
	}
	return out
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	snap := s.src.Snapshot()
	data := struct {
		FleetSize int
		Slots     int
		Selected  int
	}{
		FleetSize: len(snap.Fleet),
		Slots:     len(snap.Mapping),
		Selected:  len(snap.Selection),
	}
	_ = s.tpl.Execute(w, data)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(buildPayload(s.src.Snapshot()))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	ch := make(chan store.Snapshot, 8)
	s.mu.Lock()
	s.conns[conn] = ch
	s.mu.Unlock()

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, conn)
			s.mu.Unlock()
			conn.Close()
		}()
		if err := s.writeSnapshot(conn, s.src.Snapshot()); err != nil {
			return
		}
		for snap := range ch {
			if err := s.writeSnapshot(conn, snap); err != nil {
				return
			}
		}
	}()
}

func (s *Server) writeSnapshot(conn *websocket.Conn, snap store.Snapshot) error {
	payload, err := json.Marshal(buildPayload(snap))
	if err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, payload)
}

func (s *Server) broadcast(snap store.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn, ch := range s.conns {
		select {
		case ch <- snap:
		default:
			// Slow consumer; skip this update rather than block the store.
			s.log.Debug("websocket consumer lagging", "addr", conn.RemoteAddr())
		}
	}
}
