package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/pulselang/pulse/cmd/pulse/internal/config"
	"github.com/pulselang/pulse/internal/cache"
	"github.com/pulselang/pulse/pkg/compiler"
)

type devServer struct {
	port       int
	host       string
	watcher    *fsnotify.Watcher
	wsClients  map[*websocket.Conn]bool
	wsMutex    sync.RWMutex
	upgrader   websocket.Upgrader
	buildMutex sync.Mutex
	buildCache *cache.Cache
	config     *config.Config
}

func newDevCommand() *cobra.Command {
	var port int
	var host string
	var cwd string

	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Start the development server",
		Long:  `Starts a development server with file watching, recompilation and live reload.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cwd != "" {
				if err := os.Chdir(cwd); err != nil {
					return fmt.Errorf("failed to change directory to %s: %w", cwd, err)
				}
			}
			return runDev(host, port)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to run the dev server on")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind the dev server to")
	cmd.Flags().StringVar(&cwd, "cwd", "", "Working directory of the app (defaults to current)")

	return cmd
}

func runDev(host string, port int) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load pulse.yml: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}

	// CLI takes precedence over pulse.yml
	if port != 0 {
		cfg.Dev.Port = port
	} else {
		port = cfg.Dev.Port
	}
	if host != "" {
		cfg.Dev.Host = host
	} else {
		host = cfg.Dev.Host
	}

	buildCache, err := cache.New(cache.DefaultConfig())
	if err != nil {
		log.Printf("⚠️  Failed to initialize build cache: %v", err)
	}

	server := &devServer{
		port:       port,
		host:       host,
		wsClients:  make(map[*websocket.Conn]bool),
		buildCache: buildCache,
		config:     cfg,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// allow all origins in dev mode
				return true
			},
		},
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()
	server.watcher = watcher

	if err := server.setupWatcher(); err != nil {
		return fmt.Errorf("failed to setup watcher: %w", err)
	}

	log.Println("🚀 Starting Pulse dev server...")
	if err := server.compileAll(); err != nil {
		log.Printf("⚠️  Initial compile: %v", err)
	}

	go server.watchFiles()

	mux := http.NewServeMux()
	mux.HandleFunc("/pulse/live", server.handleWebSocket)
	mux.HandleFunc("/pulse/reload.js", server.serveReloadScript)
	mux.HandleFunc("/dist/", server.serveCompiled)
	mux.HandleFunc("/", server.serveStatic)

	addr := fmt.Sprintf("%s:%d", host, port)
	log.Printf("✨ Dev server running at http://%s", addr)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Println("\n🛑 Shutting down dev server...")

		if server.buildCache != nil {
			server.buildCache.Close()
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
	}()

	err = srv.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

func (s *devServer) setupWatcher() error {
	dirs := []string{s.config.SrcDir, s.config.Dev.StaticDir}
	for _, root := range dirs {
		if _, err := os.Stat(root); err != nil {
			continue
		}
		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				if strings.HasPrefix(info.Name(), ".") || info.Name() == "node_modules" {
					return filepath.SkipDir
				}
				return s.watcher.Add(path)
			}
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *devServer) watchFiles() {
	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer

	var pendingEvents []fsnotify.Event
	var mu sync.Mutex

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			if !s.isRelevantFile(event.Name) {
				continue
			}

			mu.Lock()
			pendingEvents = append(pendingEvents, event)
			mu.Unlock()

			debounce.Reset(100 * time.Millisecond)

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			log.Println("Watcher error:", err)

		case <-debounce.C:
			mu.Lock()
			events := pendingEvents
			pendingEvents = nil
			mu.Unlock()

			if len(events) > 0 {
				s.handleFileChanges(events)
			}
		}
	}
}

func (s *devServer) isRelevantFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".pulse" || ext == ".css" || ext == ".js" || ext == ".html"
}

func (s *devServer) handleFileChanges(events []fsnotify.Event) {
	var changedPulse []string
	var hasStaticChanges bool

	seen := make(map[string]bool)
	for _, event := range events {
		if seen[event.Name] {
			continue
		}
		seen[event.Name] = true

		if strings.HasSuffix(event.Name, ".pulse") {
			changedPulse = append(changedPulse, event.Name)
		} else {
			hasStaticChanges = true
		}

		// pick up newly created directories
		if event.Op&fsnotify.Create != 0 {
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				s.watcher.Add(event.Name)
			}
		}
	}

	if len(changedPulse) > 0 {
		if s.buildCache != nil {
			for _, file := range changedPulse {
				s.buildCache.InvalidateSource(file)
			}
		}

		log.Printf("🔄 %d component(s) changed, recompiling...", len(changedPulse))
		if errs := s.compileFiles(changedPulse); errs > 0 {
			s.notifyClients("error", map[string]interface{}{
				"message": fmt.Sprintf("Compilation failed with %d error(s)", errs),
			})
		} else {
			log.Println("✅ Compile succeeded, reloading...")
			s.notifyClients("reload", map[string]interface{}{
				"target": "components",
			})
		}
	}

	if hasStaticChanges {
		log.Println("🎨 Static files changed, reloading...")
		s.notifyClients("reload", map[string]interface{}{
			"target": "static",
		})
	}
}

// compileAll compiles every component under the source directory.
func (s *devServer) compileAll() error {
	files, err := findPulseFiles(s.config.SrcDir)
	if err != nil {
		return err
	}
	if errs := s.compileFiles(files); errs > 0 {
		return fmt.Errorf("%d error(s)", errs)
	}
	log.Printf("✅ Compiled %d component(s)", len(files))
	return nil
}

func (s *devServer) compileFiles(files []string) int {
	s.buildMutex.Lock()
	defer s.buildMutex.Unlock()

	totalErrors := 0
	for _, file := range files {
		if _, err := os.Stat(file); err != nil {
			// deleted while pending; drop its output
			continue
		}
		n, err := compileFile(file, s.config.SrcDir, s.config.OutDir, s.buildCache, compiler.Options{
			Runtime:     s.config.Runtime,
			SourceMap:   true,
			ScopeStyles: s.config.Scoped(),
		})
		if err != nil {
			log.Printf("❌ %s: %v", file, err)
			totalErrors++
			continue
		}
		totalErrors += n
	}
	return totalErrors
}

func (s *devServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("WebSocket upgrade error:", err)
		return
	}
	defer conn.Close()

	s.wsMutex.Lock()
	s.wsClients[conn] = true
	s.wsMutex.Unlock()

	defer func() {
		s.wsMutex.Lock()
		delete(s.wsClients, conn)
		s.wsMutex.Unlock()
	}()

	for {
		var msg map[string]interface{}
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}

		switch msg["type"] {
		case "HELLO":
			conn.WriteJSON(map[string]interface{}{
				"type": "ACK",
			})
		default:
			log.Printf("Unknown WebSocket message type: %v", msg["type"])
		}
	}
}

func (s *devServer) notifyClients(msgType string, data map[string]interface{}) {
	s.wsMutex.RLock()
	defer s.wsMutex.RUnlock()

	message := map[string]interface{}{
		"type": strings.ToUpper(msgType),
	}
	for k, v := range data {
		message[k] = v
	}

	for client := range s.wsClients {
		if err := client.WriteJSON(message); err != nil {
			log.Printf("Failed to send message to client: %v", err)
		}
	}
}

func (s *devServer) serveCompiled(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/dist/")
	path := filepath.Join(s.config.OutDir, filepath.FromSlash(rel))

	content, err := os.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	switch {
	case strings.HasSuffix(path, ".js"):
		w.Header().Set("Content-Type", "application/javascript")
	case strings.HasSuffix(path, ".map"):
		w.Header().Set("Content-Type", "application/json")
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(content)
}

func (s *devServer) serveStatic(w http.ResponseWriter, r *http.Request) {
	rel := strings.TrimPrefix(r.URL.Path, "/")
	if rel == "" {
		rel = "index.html"
	}
	path := filepath.Join(s.config.Dev.StaticDir, filepath.FromSlash(rel))

	content, err := os.ReadFile(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	if strings.HasSuffix(path, ".html") {
		w.Header().Set("Content-Type", "text/html")
		content = injectReloadScript(content)
	}
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(content)
}

func (s *devServer) serveReloadScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Write([]byte(reloadScript))
}

// injectReloadScript appends the live-reload client to served HTML pages.
func injectReloadScript(html []byte) []byte {
	tag := `<script src="/pulse/reload.js"></script>`
	out := string(html)
	if idx := strings.LastIndex(out, "</body>"); idx >= 0 {
		return []byte(out[:idx] + tag + "\n" + out[idx:])
	}
	return []byte(out + tag)
}

const reloadScript = `(() => {
  const url = "ws://" + location.host + "/pulse/live";
  let ws;
  const connect = () => {
    ws = new WebSocket(url);
    ws.onopen = () => ws.send(JSON.stringify({ type: "HELLO" }));
    ws.onmessage = (e) => {
      const msg = JSON.parse(e.data);
      if (msg.type === "RELOAD") location.reload();
      if (msg.type === "ERROR") console.error("[pulse]", msg.message);
    };
    ws.onclose = () => setTimeout(connect, 1000);
  };
  connect();
})();
`
