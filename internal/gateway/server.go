// Package gateway is the HTTP surface: it validates outbound dispatch
// requests, resolves recipients, and relays them to the live session. It
// also mounts the observer push channel and the static UI.
package gateway

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wagate/backend/internal/address"
	"github.com/wagate/backend/internal/casestore"
	"github.com/wagate/backend/internal/provider"
	"github.com/wagate/backend/internal/session"
	"github.com/wagate/backend/internal/ws"
)

// sessionSource is the slice of the lifecycle machine the gateway needs:
// the live client plus state for health reporting.
type sessionSource interface {
	Client() provider.Client
	Current() session.State
	IsReady() bool
}

type Server struct {
	sess       sessionSource
	hub        *ws.Hub
	cases      *casestore.Store
	staticDir  string
	httpClient *http.Client
	started    time.Time
}

func NewServer(sess sessionSource, hub *ws.Hub, cases *casestore.Store, staticDir string) *Server {
	return &Server{
		sess:       sess,
		hub:        hub,
		cases:      cases,
		staticDir:  staticDir,
		httpClient: http.DefaultClient,
		started:    time.Now(),
	}
}

func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/send-message", postOnly(s.handleSendMessage))
	mux.HandleFunc("/send-media", postOnly(s.handleSendMedia))
	mux.HandleFunc("/send-group-message", postOnly(s.handleSendGroupMessage))
	mux.HandleFunc("/clear-message", postOnly(s.handleClearMessage))
	mux.HandleFunc("/save-case", postOnly(s.handleSaveCase))
	mux.HandleFunc("/read-case", postOnly(s.handleReadCase))
	mux.HandleFunc("/delete-case", postOnly(s.handleDeleteCase))

	if s.staticDir != "" {
		mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))
	}
}

func postOnly(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The UI may be served from another origin; the API is open like
		// the surface it replaces.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h(w, r)
	}
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, envelope{Status: false, Message: "invalid request body"})
		return false
	}
	return true
}

// --- Observer channel ---

var upgrader = websocket.Upgrader{
	// Observers may connect from any origin, matching the API policy.
	CheckOrigin: func(*http.Request) bool { return true },
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	log.Printf("Observer connected: %s", r.RemoteAddr)
	sub := s.hub.Add(conn)

	go func() {
		defer func() {
			s.hub.Remove(sub)
			log.Printf("Observer disconnected: %s", r.RemoteAddr)
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// --- Dispatch operations ---

type sendMessageRequest struct {
	Number  string `json:"number"`
	Message string `json:"message"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := requireFields(map[string]string{"number": req.Number, "message": req.Message}); errs != nil {
		respondValidation(w, errs)
		return
	}

	client := s.sess.Client()
	number := address.Normalize(req.Number)

	registered, err := client.IsRegisteredUser(r.Context(), number)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	if !registered {
		respondPrecondition(w, "The number is not registered")
		return
	}

	receipt, err := client.SendText(r.Context(), number, req.Message)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, receipt)
}

type sendMediaRequest struct {
	Number  string `json:"number"`
	Caption string `json:"caption"`
	File    string `json:"file"`
}

func (s *Server) handleSendMedia(w http.ResponseWriter, r *http.Request) {
	var req sendMediaRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := requireFields(map[string]string{"number": req.Number, "file": req.File}); errs != nil {
		respondValidation(w, errs)
		return
	}

	number := address.Normalize(req.Number)
	// Media sends skip the registration check that direct sends perform.
	media, err := fetchMedia(s.httpClient, req.File)
	if err != nil {
		respondProviderError(w, err)
		return
	}

	receipt, err := s.sess.Client().SendMedia(r.Context(), number, media, req.Caption)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, receipt)
}

type sendGroupMessageRequest struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (s *Server) handleSendGroupMessage(w http.ResponseWriter, r *http.Request) {
	var req sendGroupMessageRequest
	if !decode(w, r, &req) {
		return
	}

	errs := requireFields(map[string]string{"message": req.Message})
	if req.ID == "" && req.Name == "" {
		if errs == nil {
			errs = make(fieldErrors)
		}
		errs["id"] = "Invalid value, you can use `id` or `name`"
	}
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	client := s.sess.Client()

	// An explicit id is trusted as-is; only a name goes through resolution.
	chatID := req.ID
	if chatID == "" {
		chats, err := client.Chats(r.Context())
		if err != nil {
			respondProviderError(w, err)
			return
		}
		group, ok := address.FindGroupByName(chats, req.Name)
		if !ok {
			respondPrecondition(w, "No group found with name: "+req.Name)
			return
		}
		chatID = group.ID
	}

	receipt, err := client.SendText(r.Context(), chatID, req.Message)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, receipt)
}

type clearMessageRequest struct {
	Number string `json:"number"`
}

func (s *Server) handleClearMessage(w http.ResponseWriter, r *http.Request) {
	var req clearMessageRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := requireFields(map[string]string{"number": req.Number}); errs != nil {
		respondValidation(w, errs)
		return
	}

	client := s.sess.Client()
	number := address.Normalize(req.Number)

	registered, err := client.IsRegisteredUser(r.Context(), number)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	if !registered {
		respondPrecondition(w, "The number is not registered")
		return
	}

	if err := client.ClearMessages(r.Context(), number); err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, true)
}

// --- Case CRUD ---

type saveCaseRequest struct {
	FileName string          `json:"fileName"`
	Data     json.RawMessage `json:"data"`
}

func (s *Server) handleSaveCase(w http.ResponseWriter, r *http.Request) {
	var req saveCaseRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := requireFields(map[string]string{"fileName": req.FileName, "data": string(req.Data)}); errs != nil {
		respondValidation(w, errs)
		return
	}

	// Callers may double-encode: a JSON string whose content is the entry.
	entry := req.Data
	var inner string
	if err := json.Unmarshal(req.Data, &inner); err == nil {
		if json.Valid([]byte(inner)) {
			entry = json.RawMessage(inner)
		}
	}

	if err := s.cases.Append(req.FileName, entry); err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, "success")
}

type readCaseRequest struct {
	FileName string `json:"fileName"`
}

func (s *Server) handleReadCase(w http.ResponseWriter, r *http.Request) {
	var req readCaseRequest
	if !decode(w, r, &req) {
		return
	}
	if errs := requireFields(map[string]string{"fileName": req.FileName}); errs != nil {
		respondValidation(w, errs)
		return
	}

	entries, err := s.cases.Read(req.FileName)
	if err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, entries)
}

type deleteCaseRequest struct {
	FileName string `json:"fileName"`
	Index    *int   `json:"index"`
}

func (s *Server) handleDeleteCase(w http.ResponseWriter, r *http.Request) {
	var req deleteCaseRequest
	if !decode(w, r, &req) {
		return
	}
	errs := requireFields(map[string]string{"fileName": req.FileName})
	if req.Index == nil {
		if errs == nil {
			errs = make(fieldErrors)
		}
		errs["index"] = "Invalid value"
	}
	if errs != nil {
		respondValidation(w, errs)
		return
	}

	if err := s.cases.DeleteAt(req.FileName, *req.Index); err != nil {
		respondProviderError(w, err)
		return
	}
	respondOK(w, "success")
}
