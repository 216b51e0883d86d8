package mediatracker

import (
	"log"
	"strings"
	"sync"
)

// FetchFunc reads the content of an evidence message from the chat platform.
type FetchFunc func(messageID string) (string, error)

// DeleteFunc removes an evidence message from the chat platform.
type DeleteFunc func(messageID string) error

// MediaTracker is a process-local registry keeping transient evidence
// messages synchronized with warn records. The same evidence message id can
// be reachable under a warn id and under the originating request message id;
// removal under either key must clear every reference, and the external
// delete must fire at most once even under concurrent cleanup.
//
// The tracker is reconstructible from nothing: losing it only degrades
// evidence cleanup, never durable state.
type MediaTracker struct {
	mu               sync.Mutex
	warnToMessage    map[string]string
	requestToMessage map[string]string
	content          map[string]string
}

func NewMediaTracker() *MediaTracker {
	return &MediaTracker{
		warnToMessage:    make(map[string]string),
		requestToMessage: make(map[string]string),
		content:          make(map[string]string),
	}
}

// RegisterContent caches the textual content of a warn's evidence message.
// Empty identifiers and blank content are no-ops.
func (t *MediaTracker) RegisterContent(warnID, text string) {
	if warnID == "" {
		return
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.content[warnID] = text
}

// RegisterWarnMessage maps a warn id to its evidence message. Idempotent.
func (t *MediaTracker) RegisterWarnMessage(warnID, messageID string) {
	if warnID == "" || messageID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.warnToMessage[warnID] = messageID
}

// RegisterRequestMessage maps the originating request message to the
// evidence message. Idempotent.
func (t *MediaTracker) RegisterRequestMessage(requestMessageID, messageID string) {
	if requestMessageID == "" || messageID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.requestToMessage[requestMessageID] = messageID
}

// ResolveContent returns the evidence text for a warn. Cached content wins;
// otherwise the message id registered under either key is fetched once and
// the result cached. Fetch failures yield an empty string, never an error.
// The lock is not held across the fetch call.
func (t *MediaTracker) ResolveContent(warnID, requestMessageID string, fetch FetchFunc) string {
	t.mu.Lock()
	if warnID != "" {
		if cached, ok := t.content[warnID]; ok && strings.TrimSpace(cached) != "" {
			t.mu.Unlock()
			return cached
		}
	}

	messageID := ""
	if warnID != "" {
		messageID = t.warnToMessage[warnID]
	}
	if messageID == "" && requestMessageID != "" {
		messageID = t.requestToMessage[requestMessageID]
	}
	t.mu.Unlock()

	if messageID == "" || fetch == nil {
		return ""
	}

	text, err := fetch(messageID)
	if err != nil {
		log.Printf("⚠️ Failed to fetch evidence message %s: %v", messageID, err)
		return ""
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if warnID != "" {
		t.mu.Lock()
		t.content[warnID] = text
		t.mu.Unlock()
	}
	return text
}

// ForgetAndDeleteByWarn removes every mapping that points at the warn's
// evidence message and then deletes the message externally. Only the caller
// that actually removed the mapping performs the delete, so concurrent
// cleanups for the same message delete at most once. Delete failures are
// swallowed; the in-memory cleanup has already happened.
func (t *MediaTracker) ForgetAndDeleteByWarn(warnID string, del DeleteFunc) {
	messageID, ok := t.removeByWarn(warnID)
	if !ok {
		return
	}
	t.deleteExternal(messageID, del)
}

// ForgetAndDeleteByRequest is ForgetAndDeleteByWarn keyed by the originating
// request message id.
func (t *MediaTracker) ForgetAndDeleteByRequest(requestMessageID string, del DeleteFunc) {
	messageID, ok := t.removeByRequest(requestMessageID)
	if !ok {
		return
	}
	t.deleteExternal(messageID, del)
}

// ForgetByWarn drops the mappings without touching the external message.
func (t *MediaTracker) ForgetByWarn(warnID string) {
	t.removeByWarn(warnID)
}

// ForgetByRequest drops the mappings without touching the external message.
func (t *MediaTracker) ForgetByRequest(requestMessageID string) {
	t.removeByRequest(requestMessageID)
}

// ForgetContent drops the cached text independent of message bookkeeping.
func (t *MediaTracker) ForgetContent(warnID string) {
	if warnID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.content, warnID)
}

// removeByWarn is the compare-and-remove primitive: it atomically removes the
// warn mapping and, when it was present, clears every other mapping pointing
// at the same message id. Returns ok only for the caller that removed it.
func (t *MediaTracker) removeByWarn(warnID string) (string, bool) {
	if warnID == "" {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	messageID, ok := t.warnToMessage[warnID]
	if !ok {
		return "", false
	}
	delete(t.warnToMessage, warnID)
	delete(t.content, warnID)
	t.cleanupByMessageIDLocked(messageID)
	return messageID, true
}

func (t *MediaTracker) removeByRequest(requestMessageID string) (string, bool) {
	if requestMessageID == "" {
		return "", false
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	messageID, ok := t.requestToMessage[requestMessageID]
	if !ok {
		return "", false
	}
	delete(t.requestToMessage, requestMessageID)
	t.cleanupByMessageIDLocked(messageID)
	return messageID, true
}

// cleanupByMessageIDLocked removes every remaining mapping under both key
// spaces that points at messageID, along with any cached content for those
// warn ids. Caller holds t.mu.
func (t *MediaTracker) cleanupByMessageIDLocked(messageID string) {
	for k, v := range t.warnToMessage {
		if v == messageID {
			delete(t.warnToMessage, k)
			delete(t.content, k)
		}
	}
	for k, v := range t.requestToMessage {
		if v == messageID {
			delete(t.requestToMessage, k)
		}
	}
}

func (t *MediaTracker) deleteExternal(messageID string, del DeleteFunc) {
	if del == nil {
		return
	}
	if err := del(messageID); err != nil {
		// The message may already be gone; cleanup stands either way.
		log.Printf("⚠️ Failed to delete evidence message %s: %v", messageID, err)
	}
}
