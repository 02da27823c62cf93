// Copyright 2026 Marc-Antoine Ruel. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"html/template"
	"image"
	"image/png"
	"log"
	"math"
	"net"
	"net/http"
	"sync"

	"github.com/maruel/interrupt"
	"github.com/maruel/thermospot/batch"
	"github.com/maruel/thermospot/report"
	"golang.org/x/net/websocket"
)

// measurement is what is sent to the browser for each image.
type measurement struct {
	Image  string
	Labels []string
	Spots  map[string]*float64 // nil when absent.
	Mean   *float64
	Min    *float64 // Coldest pixel.
	Max    *float64 // Hottest pixel.
	Error  string   `json:",omitempty"`
}

type entry struct {
	m    measurement
	gray *image.Gray // nil when the image failed.
}

func newEntry(row report.Row, img *batch.Image) *entry {
	e := &entry{m: measurement{Image: row.Image, Labels: row.Result.Labels, Spots: map[string]*float64{}}}
	for _, l := range row.Result.Labels {
		if v, ok := row.Result.Get(l).Value(); ok {
			e.m.Spots[l] = &v
		}
	}
	if v, ok := row.Result.Mean.Value(); ok {
		e.m.Mean = &v
	}
	if row.Err != nil {
		e.m.Error = row.Err.Error()
	}
	if img != nil {
		e.m.Min = finite(img.Grid.Min())
		e.m.Max = finite(img.Grid.Max())
		e.gray = img.Grid.Gray()
	}
	return e
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// WebServer shows the images as they are measured.
type WebServer struct {
	cond      sync.Cond
	entries   [32]*entry // Most recent measurements.
	lastIndex int        // Index of the most recent entry, -1 if none.
	count     int        // Total number of entries added.
}

func newWebServer() *WebServer {
	return &WebServer{
		cond:      *sync.NewCond(&sync.Mutex{}),
		lastIndex: -1,
	}
}

// StartWebServer listens on port in the background.
func StartWebServer(port int) *WebServer {
	s := newWebServer()
	fmt.Printf("Listening on %d\n", port)
	go func() {
		if err := http.ListenAndServe(fmt.Sprintf(":%d", port), loggingHandler{s.mux()}); err != nil {
			log.Printf("http: %s", err)
		}
	}()
	go func() {
		<-interrupt.Channel
		s.cond.Broadcast()
	}()
	return s
}

// Add records a processed image and wakes up the streams.
func (s *WebServer) Add(row report.Row, img *batch.Image) {
	e := newEntry(row, img)
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	s.lastIndex = (s.lastIndex + 1) % len(s.entries)
	s.entries[s.lastIndex] = e
	s.count++
	s.cond.Broadcast()
}

func (s *WebServer) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.root)
	mux.HandleFunc("/still.png", s.still)
	mux.HandleFunc("/latest.json", s.latest)
	mux.Handle("/stream", websocket.Handler(s.stream))
	return mux
}

// recent returns the entries, most recent first. The lock must be held.
func (s *WebServer) recent() []*entry {
	var out []*entry
	for i := 0; i < len(s.entries); i++ {
		j := (s.lastIndex - i + len(s.entries)) % len(s.entries)
		if s.lastIndex == -1 || s.entries[j] == nil {
			break
		}
		out = append(out, s.entries[j])
	}
	return out
}

var rootTmpl = template.Must(template.New("root").Parse(`<!DOCTYPE html>
<html>
<head>
	<title>thermospot</title>
	<style>
		img.large { width: 640px; height: auto; image-rendering: pixelated; }
		td { padding: 0 0.5em; text-align: right; }
	</style>
	<script>
	function start() {
		var ws = new WebSocket("ws://" + location.host + "/stream");
		ws.onmessage = function(e) {
			var kind = e.data[0], data = e.data.substring(1);
			if (kind == "I") {
				document.getElementById("still").src = "data:image/png;base64," + data;
			} else if (kind == "M") {
				var m = JSON.parse(data);
				var row = document.getElementById("rows").insertRow(0);
				row.insertCell().textContent = m.Image;
				m.Labels.forEach(function(l) {
					var v = m.Spots[l];
					row.insertCell().textContent = v == null ? "" : v.toFixed(1);
				});
				row.insertCell().textContent = m.Mean == null ? "" : m.Mean.toFixed(1);
				row.insertCell().textContent = m.Error || "";
			}
		};
	}
	</script>
</head>
<body onload="start()">
	<img class="large" id="still" src="/still.png"><br>
	{{.Count}} images
	<table>
	<tbody id="rows">
	{{range .Entries}}<tr><td>{{.Image}}</td>{{range .Values}}<td>{{.}}</td>{{end}}<td>{{.Error}}</td></tr>
	{{end}}</tbody>
	</table>
</body>
</html>`))

type rootRow struct {
	Image  string
	Values []string
	Error  string
}

func (s *WebServer) root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	s.cond.L.Lock()
	data := struct {
		Count   int
		Entries []rootRow
	}{Count: s.count}
	for _, e := range s.recent() {
		row := rootRow{Image: e.m.Image, Error: e.m.Error}
		for _, l := range e.m.Labels {
			row.Values = append(row.Values, format(e.m.Spots[l]))
		}
		row.Values = append(row.Values, format(e.m.Mean))
		data.Entries = append(data.Entries, row)
	}
	s.cond.L.Unlock()
	w.Header().Set("Content-Type", "text/html")
	if err := rootTmpl.Execute(w, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func format(v *float64) string {
	if v == nil {
		return ""
	}
	return fmt.Sprintf("%.1f", *v)
}

func (s *WebServer) still(w http.ResponseWriter, r *http.Request) {
	s.cond.L.Lock()
	var img *image.Gray
	for _, e := range s.recent() {
		if e.gray != nil {
			img = e.gray
			break
		}
	}
	s.cond.L.Unlock()
	if img == nil {
		http.Error(w, "no image yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate")
	if err := png.Encode(w, img); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *WebServer) latest(w http.ResponseWriter, r *http.Request) {
	s.cond.L.Lock()
	var out []measurement
	for _, e := range s.recent() {
		out = append(out, e.m)
	}
	s.cond.L.Unlock()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// stream sends each new measurement as WebSocket frames.
//
// Frame "I" is the base64 encoded PNG, frame "M" the JSON measurement.
func (s *WebServer) stream(w *websocket.Conn) {
	log.Printf("websocket from %s", w.Request().RemoteAddr)
	defer w.Close()
	buf := &bytes.Buffer{}
	s.cond.L.Lock()
	defer s.cond.L.Unlock()
	sent := s.count
	for !interrupt.IsSet() {
		s.cond.Wait()
		for ; !interrupt.IsSet() && sent != s.count; sent++ {
			// Skip what was overwritten in the ring.
			if s.count-sent > len(s.entries) {
				sent = s.count - len(s.entries)
			}
			e := s.entries[(s.lastIndex-(s.count-sent-1)+len(s.entries))%len(s.entries)]
			s.cond.L.Unlock()
			// Do the actual I/O without the lock.
			err := send(w, buf, e)
			s.cond.L.Lock()
			// To break out of the loop, the lock must be held.
			if err != nil {
				log.Printf("websocket err: %s", err)
				return
			}
		}
	}
}

func send(w *websocket.Conn, buf *bytes.Buffer, e *entry) error {
	defer buf.Reset()
	if e.gray != nil {
		buf.WriteString("I")
		encoder := base64.NewEncoder(base64.StdEncoding, buf)
		if err := png.Encode(encoder, e.gray); err != nil {
			return err
		}
		encoder.Close()
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
		buf.Reset()
	}
	buf.WriteString("M")
	if err := json.NewEncoder(buf).Encode(&e.m); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Private details.

type loggingHandler struct {
	handler http.Handler
}

type loggingResponseWriter struct {
	http.ResponseWriter
	length int
	status int
}

func (l *loggingResponseWriter) Write(data []byte) (size int, err error) {
	size, err = l.ResponseWriter.Write(data)
	l.length += size
	return
}

func (l *loggingResponseWriter) WriteHeader(status int) {
	l.ResponseWriter.WriteHeader(status)
	l.status = status
}

// Hijack is needed for websocket.
func (l *loggingResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h := l.ResponseWriter.(http.Hijacker)
	return h.Hijack()
}

// ServeHTTP logs each HTTP request if -v is passed.
func (l loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	lrw := &loggingResponseWriter{ResponseWriter: w, status: http.StatusOK}
	l.handler.ServeHTTP(lrw, r)
	log.Printf("%s - %3d %6db %4s %s\n", r.RemoteAddr, lrw.status, lrw.length, r.Method, r.RequestURI)
}
