package notifier

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"dtek-outage-monitor/internal/models"
)

const testToken = "123:abc"

type apiCall struct {
	method string
	form   map[string]string
}

// fakeBotAPI answers Bot API methods with canned JSON and records calls.
type fakeBotAPI struct {
	mu        sync.Mutex
	calls     []apiCall
	responses map[string]string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	prefix := "/bot" + testToken + "/"
	if !strings.HasPrefix(r.URL.Path, prefix) {
		http.NotFound(w, r)
		return
	}
	method := strings.TrimPrefix(r.URL.Path, prefix)
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	form := map[string]string{}
	for k := range r.PostForm {
		form[k] = r.PostForm.Get(k)
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{method: method, form: form})
	body, ok := f.responses[method]
	f.mu.Unlock()

	if method == "getMe" {
		body = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"bot","username":"dtek_bot"}}`
		ok = true
	}
	if !ok {
		body = `{"ok":false,"error_code":404,"description":"Not Found"}`
	}
	w.Header().Set("Content-Type", "application/json")
	if strings.Contains(body, `"ok":false`) {
		w.WriteHeader(http.StatusBadRequest)
	}
	fmt.Fprint(w, body)
}

func (f *fakeBotAPI) last() apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestNotifier(t *testing.T, responses map[string]string) (Notifier, *fakeBotAPI) {
	t.Helper()
	api := &fakeBotAPI{responses: responses}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	n, err := NewTelegramNotifierWithClient(testToken, -100500, srv.URL+"/bot%s/%s", srv.Client())
	if err != nil {
		t.Fatalf("NewTelegramNotifierWithClient: %v", err)
	}
	return n, api
}

func TestSend(t *testing.T) {
	n, api := newTestNotifier(t, map[string]string{
		"sendMessage": `{"ok":true,"result":{"message_id":77,"date":1,"chat":{"id":-100500,"type":"channel"},"text":"hi"}}`,
	})

	id, err := n.Send("<b>hi</b>")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id != 77 {
		t.Errorf("id = %d, want 77", id)
	}

	call := api.last()
	if call.method != "sendMessage" {
		t.Fatalf("method = %q", call.method)
	}
	if call.form["chat_id"] != "-100500" {
		t.Errorf("chat_id = %q", call.form["chat_id"])
	}
	if call.form["text"] != "<b>hi</b>" {
		t.Errorf("text = %q", call.form["text"])
	}
	if call.form["parse_mode"] != "HTML" {
		t.Errorf("parse_mode = %q", call.form["parse_mode"])
	}
}

func TestSendFailure(t *testing.T) {
	n, _ := newTestNotifier(t, map[string]string{
		"sendMessage": `{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`,
	})

	if _, err := n.Send("hi"); !errors.Is(err, models.ErrSend) {
		t.Errorf("err = %v, want ErrSend", err)
	}
}

func TestEdit(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.EditResult
		wantErr  bool
	}{
		{
			name:     "ok",
			response: `{"ok":true,"result":{"message_id":77,"date":1,"chat":{"id":-100500,"type":"channel"}}}`,
			want:     models.EditOK,
		},
		{
			name:     "unchanged",
			response: `{"ok":false,"error_code":400,"description":"Bad Request: message is not modified: specified new message content and reply markup are exactly the same as a current content and reply markup of the message"}`,
			want:     models.EditUnchanged,
		},
		{
			name:     "not found",
			response: `{"ok":false,"error_code":400,"description":"Bad Request: message to edit not found"}`,
			wantErr:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, api := newTestNotifier(t, map[string]string{"editMessageText": tt.response})

			got, err := n.Edit(77, "text")
			if tt.wantErr {
				if !errors.Is(err, models.ErrEdit) {
					t.Fatalf("err = %v, want ErrEdit", err)
				}
				if !IsMessageGone(err) {
					t.Errorf("IsMessageGone(%v) = false", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Edit: %v", err)
			}
			if got != tt.want {
				t.Errorf("Edit = %v, want %v", got, tt.want)
			}
			if call := api.last(); call.form["message_id"] != "77" {
				t.Errorf("message_id = %q", call.form["message_id"])
			}
		})
	}
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     models.DeleteResult
		wantErr  bool
	}{
		{"ok", `{"ok":true,"result":true}`, models.DeleteOK, false},
		{"already gone", `{"ok":false,"error_code":400,"description":"Bad Request: message to delete not found"}`, models.DeleteAlreadyGone, false},
		{"forbidden", `{"ok":false,"error_code":403,"description":"Forbidden: bot was kicked from the channel chat"}`, models.DeleteOK, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, api := newTestNotifier(t, map[string]string{"deleteMessage": tt.response})

			got, err := n.Delete(5)
			if tt.wantErr {
				if !errors.Is(err, models.ErrDelete) {
					t.Fatalf("err = %v, want ErrDelete", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Delete: %v", err)
			}
			if got != tt.want {
				t.Errorf("Delete = %v, want %v", got, tt.want)
			}
			if call := api.last(); call.method != "deleteMessage" || call.form["message_id"] != "5" {
				t.Errorf("call = %+v", call)
			}
		})
	}
}
