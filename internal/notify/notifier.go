// Package notify sends fire-and-forget HTTP notifications for visor events.
// The primary use case is ntfy.sh, but any HTTP webhook works.
package notify

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/LISSConsulting/LISSTech.Visor/internal/loop"
)

// Notifier posts plain-text HTTP notifications for selected visor events.
type Notifier struct {
	url              string
	title            string
	onStreamLost     bool
	onRecognizerExit bool
	onStop           bool
	client           *http.Client
	wg               sync.WaitGroup
}

// New creates a Notifier. title is used as the X-Title header; if empty,
// "visor" is used instead.
func New(notifURL, title string, onStreamLost, onRecognizerExit, onStop bool) *Notifier {
	if title == "" {
		title = "visor"
	}
	return &Notifier{
		url:              notifURL,
		title:            title,
		onStreamLost:     onStreamLost,
		onRecognizerExit: onRecognizerExit,
		onStop:           onStop,
		client:           &http.Client{Timeout: 10 * time.Second},
	}
}

// Hook is called for every journaled entry of a run. It fires
// asynchronous POSTs for events that match the configured notification flags.
func (n *Notifier) Hook(entry loop.LogEntry) {
	var send bool
	switch entry.Kind {
	case loop.LogStreamClosed:
		send = n.onStreamLost
	case loop.LogRecognizerExit:
		send = n.onRecognizerExit
	case loop.LogStopped:
		send = n.onStop
	}
	if !send {
		return
	}
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		n.post(entry.Message)
	}()
}

// Wait blocks until every notification already handed to Hook has been
// delivered or has failed. Used at shutdown so the stop notice is not lost
// when the process exits.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

// post sends a plain-text POST to the configured URL. Errors are silently
// discarded so notification failures never interrupt the visor.
func (n *Notifier) post(message string) {
	req, err := http.NewRequest(http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Title", n.title)
	resp, err := n.client.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
