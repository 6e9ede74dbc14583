package mail

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestParseRequestJSON(t *testing.T) {
	body := `{"from":"a@b.com","subject":"Hi","qty":5,"urgent":true,"note":null}`
	r := httptest.NewRequest("POST", "/email-inbound", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json")

	data := ParseRequest(r)
	if data["from"] != "a@b.com" {
		t.Errorf("from = %q", data["from"])
	}
	if data["qty"] != "5" {
		t.Errorf("qty = %q, want stringified number", data["qty"])
	}
	if data["urgent"] != "true" {
		t.Errorf("urgent = %q", data["urgent"])
	}
	if data["note"] != "" {
		t.Errorf("note = %q, want empty for null", data["note"])
	}
}

func TestParseRequestForm(t *testing.T) {
	form := url.Values{"from": {"a@b.com"}, "text": {"Buy 5 shares"}}
	r := httptest.NewRequest("POST", "/email-inbound", strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	data := ParseRequest(r)
	if data["from"] != "a@b.com" {
		t.Errorf("from = %q", data["from"])
	}
	if data["text"] != "Buy 5 shares" {
		t.Errorf("text = %q", data["text"])
	}
}

func TestParseRequestMultipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("from", "a@b.com")
	_ = mw.WriteField("subject", "Buy signal")
	_ = mw.Close()

	r := httptest.NewRequest("POST", "/email-inbound", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	data := ParseRequest(r)
	if data["from"] != "a@b.com" {
		t.Errorf("from = %q", data["from"])
	}
	if data["subject"] != "Buy signal" {
		t.Errorf("subject = %q", data["subject"])
	}
}

func TestParseRequestGarbage(t *testing.T) {
	r := httptest.NewRequest("POST", "/email-inbound", strings.NewReader("\x00\xffnot json at all"))
	r.Header.Set("Content-Type", "application/json")

	data := ParseRequest(r)
	if len(data) != 0 {
		t.Errorf("expected empty map for garbage body, got %v", data)
	}
}

func TestParseRequestEmptyBody(t *testing.T) {
	r := httptest.NewRequest("POST", "/email-inbound", strings.NewReader(""))
	r.Header.Set("Content-Type", "application/json")

	data := ParseRequest(r)
	if len(data) != 0 {
		t.Errorf("expected empty map for empty body, got %v", data)
	}
}
