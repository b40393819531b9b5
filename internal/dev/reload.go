package dev

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// ReloadPath is where browsers connect for reload notifications.
const ReloadPath = "/_enhance/reload"

// ReloadMessageType is the kind of a ReloadMessage.
type ReloadMessageType string

const (
	ReloadTypeFull  ReloadMessageType = "reload"
	ReloadTypeCSS   ReloadMessageType = "css"
	ReloadTypeError ReloadMessageType = "error"
	ReloadTypeClear ReloadMessageType = "clear"
)

// ReloadMessage is sent to browsers as a JSON text frame.
type ReloadMessage struct {
	Type  ReloadMessageType `json:"type"`
	Error string            `json:"error,omitempty"`
	File  string            `json:"file,omitempty"`
}

// reloadClient is one connected browser. Writes to a websocket connection
// must not run concurrently.
type reloadClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *reloadClient) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// ReloadServer tells connected browsers to reload. The last error sent
// stays pending until ClearError, so browsers that connect in between are
// shown it too.
type ReloadServer struct {
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*reloadClient]struct{}
	pending *ReloadMessage
}

// NewReloadServer creates a ReloadServer with no clients.
func NewReloadServer() *ReloadServer {
	return &ReloadServer{
		clients: make(map[*reloadClient]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  512,
			WriteBufferSize: 1024,
			// Development only: any page may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request and holds the connection until the
// browser goes away.
func (r *ReloadServer) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		return
	}
	c := &reloadClient{conn: conn}

	r.mu.Lock()
	r.clients[c] = struct{}{}
	pending := r.pending
	r.mu.Unlock()

	if pending != nil {
		r.send(c, *pending)
	}

	// Browsers never send anything; reading only detects the close.
	for {
		if _, _, err := conn.NextReader(); err != nil {
			break
		}
	}
	r.drop(c)
}

// NotifyReload asks every browser for a full page reload.
func (r *ReloadServer) NotifyReload() {
	r.broadcast(ReloadMessage{Type: ReloadTypeFull})
}

// NotifyCSS asks every browser to refetch its stylesheets.
func (r *ReloadServer) NotifyCSS(file string) {
	r.broadcast(ReloadMessage{Type: ReloadTypeCSS, File: file})
}

// NotifyError shows errMsg in an overlay until ClearError.
func (r *ReloadServer) NotifyError(errMsg string) {
	msg := ReloadMessage{Type: ReloadTypeError, Error: errMsg}
	r.mu.Lock()
	r.pending = &msg
	r.mu.Unlock()
	r.broadcast(msg)
}

// ClearError removes the error overlay. It sends nothing when no error is
// showing.
func (r *ReloadServer) ClearError() {
	r.mu.Lock()
	showing := r.pending != nil
	r.pending = nil
	r.mu.Unlock()

	if showing {
		r.broadcast(ReloadMessage{Type: ReloadTypeClear})
	}
}

func (r *ReloadServer) broadcast(msg ReloadMessage) {
	r.mu.Lock()
	targets := make([]*reloadClient, 0, len(r.clients))
	for c := range r.clients {
		targets = append(targets, c)
	}
	r.mu.Unlock()

	for _, c := range targets {
		r.send(c, msg)
	}
}

func (r *ReloadServer) send(c *reloadClient, msg ReloadMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	if err := c.write(data); err != nil {
		r.drop(c)
	}
}

func (r *ReloadServer) drop(c *reloadClient) {
	r.mu.Lock()
	delete(r.clients, c)
	r.mu.Unlock()
	_ = c.conn.Close()
}

// ClientCount returns the number of connected browsers.
func (r *ReloadServer) ClientCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Close disconnects every browser.
func (r *ReloadServer) Close() {
	r.mu.Lock()
	clients := r.clients
	r.clients = make(map[*reloadClient]struct{})
	r.mu.Unlock()

	for c := range clients {
		_ = c.conn.Close()
	}
}

// ClientScript connects a page to ReloadPath. Pages served in dev mode get
// it appended to their head.
const ClientScript = `
<script>
(() => {
  const overlayId = "enhance-error-overlay";
  let delay = 500;

  const hideError = () => document.getElementById(overlayId)?.remove();

  const showError = (text) => {
    hideError();
    const box = document.createElement("pre");
    box.id = overlayId;
    box.textContent = text + "\n\nSave a fix to reload.";
    box.style.cssText = "position:fixed;inset:0;margin:0;padding:2rem;z-index:2147483647;" +
      "background:#111e;color:#f66;font:14px/1.5 monospace;white-space:pre-wrap;overflow:auto";
    document.body.append(box);
  };

  const refreshStyles = () => {
    for (const link of document.querySelectorAll("link[rel=stylesheet]")) {
      const url = new URL(link.href);
      url.searchParams.set("v", Date.now());
      link.href = url;
    }
  };

  const handlers = {
    reload: () => location.reload(),
    css: refreshStyles,
    error: (msg) => showError(msg.error),
    clear: hideError,
  };

  const connect = () => {
    const scheme = location.protocol === "https:" ? "wss:" : "ws:";
    const ws = new WebSocket(scheme + "//" + location.host + "/_enhance/reload");
    ws.onopen = () => { delay = 500; };
    ws.onmessage = (e) => {
      let msg;
      try { msg = JSON.parse(e.data); } catch { return; }
      handlers[msg.type]?.(msg);
    };
    ws.onclose = () => {
      setTimeout(connect, delay);
      delay = Math.min(delay * 2, 10000);
    };
  };

  connect();
})();
</script>
`
