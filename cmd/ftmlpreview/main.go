// Command ftmlpreview serves a live-reloading HTML preview of a wikitext
// file: the initial page is rendered on first load, and a background
// watcher pushes a fresh render over a websocket to every connected browser
// tab whenever the source file's contents change. Grounded on the teacher's
// pages.go servePage, which upgrades to a websocket and re-renders a CHTML
// component on every "touched" signal; here the signal is a changed mtime
// on the watched file instead of a scope mutation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dpotapov/ftml-go"
	"github.com/dpotapov/ftml-go/include"
	"github.com/dpotapov/ftml-go/render/html"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type server struct {
	path string

	mu       sync.Mutex
	lastBody string
	lastMod  time.Time

	subscribersMu sync.Mutex
	subscribers   map[chan string]struct{}
}

func newServer(path string) *server {
	return &server{path: path, subscribers: make(map[chan string]struct{})}
}

func (s *server) renderOnce(ctx context.Context) (string, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", s.path, err)
	}

	result, err := ftml.Parse(ctx, string(raw), ftml.PageInfo{PageName: s.path}, ftml.Settings{}, include.NullIncluder{}, nil)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", s.path, err)
	}
	for _, w := range result.Warnings {
		log.Printf("ftmlpreview: warning: %s", w.Error())
	}

	out, err := ftml.RenderHTML(result.Tree, ftml.PageInfo{PageName: s.path}, nil, html.Options{})
	if err != nil {
		return "", fmt.Errorf("render %s: %w", s.path, err)
	}
	return out.Body, nil
}

// watch polls the source file's modification time and broadcasts a fresh
// render to every subscriber whenever it changes. A polling loop is used
// rather than an OS file-notification library since none is present
// anywhere in the example corpus; stdlib os.Stat is the grounded choice.
func (s *server) watch(ctx context.Context) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			info, err := os.Stat(s.path)
			if err != nil {
				log.Printf("ftmlpreview: stat %s: %v", s.path, err)
				continue
			}

			s.mu.Lock()
			changed := info.ModTime().After(s.lastMod)
			s.mu.Unlock()
			if !changed {
				continue
			}

			body, err := s.renderOnce(ctx)
			if err != nil {
				log.Printf("ftmlpreview: %v", err)
				continue
			}

			s.mu.Lock()
			s.lastBody = body
			s.lastMod = info.ModTime()
			s.mu.Unlock()

			s.broadcast(body)
		}
	}
}

func (s *server) broadcast(body string) {
	s.subscribersMu.Lock()
	defer s.subscribersMu.Unlock()
	for ch := range s.subscribers {
		select {
		case ch <- body:
		default:
			// slow subscriber: drop the update rather than block the watcher
		}
	}
}

func (s *server) subscribe() chan string {
	ch := make(chan string, 1)
	s.subscribersMu.Lock()
	s.subscribers[ch] = struct{}{}
	s.subscribersMu.Unlock()
	return ch
}

func (s *server) unsubscribe(ch chan string) {
	s.subscribersMu.Lock()
	delete(s.subscribers, ch)
	s.subscribersMu.Unlock()
	close(ch)
}

func (s *server) serveIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	body := s.lastBody
	s.mu.Unlock()

	fmt.Fprintf(w, indexTemplate, body)
}

func (s *server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ftmlpreview: websocket upgrade: %v", err)
		return
	}
	defer ws.Close()

	ch := s.subscribe()
	defer s.unsubscribe(ch)

	for body := range ch {
		if err := ws.WriteMessage(websocket.TextMessage, []byte(body)); err != nil {
			return
		}
	}
}

const indexTemplate = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>ftml preview</title></head>
<body>
<div id="ftml-body">%s</div>
<script>
(function() {
	var proto = location.protocol === "https:" ? "wss:" : "ws:";
	var ws = new WebSocket(proto + "//" + location.host + "/ws");
	ws.onmessage = function(ev) {
		document.getElementById("ftml-body").innerHTML = ev.data;
	};
})();
</script>
</body>
</html>
`

func main() {
	addr := flag.String("addr", ":8080", "address to listen on")
	path := flag.String("file", "", "wikitext file to preview")
	flag.Parse()

	if *path == "" {
		log.Fatal("ftmlpreview: -file is required")
	}

	s := newServer(*path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	body, err := s.renderOnce(ctx)
	if err != nil {
		log.Fatalf("ftmlpreview: initial render: %v", err)
	}
	s.lastBody = body
	if info, err := os.Stat(*path); err == nil {
		s.lastMod = info.ModTime()
	}

	go s.watch(ctx)

	http.HandleFunc("/", s.serveIndex)
	http.HandleFunc("/ws", s.serveWebSocket)

	log.Printf("ftmlpreview: serving %s on http://localhost%s", *path, *addr)
	if err := http.ListenAndServe(*addr, nil); err != nil {
		log.Fatalf("ftmlpreview: %v", err)
	}
}
