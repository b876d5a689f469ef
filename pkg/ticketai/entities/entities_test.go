package entities

import (
	"encoding/json"
	"strings"
	"testing"
)

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func TestExtractServerScenario(t *testing.T) {
	b := Default().Extract("User john.smith@company.com has ERROR-500 on SERVER-01")

	if !contains(b.Usernames, "john.smith") {
		t.Errorf("usernames = %v, want john.smith", b.Usernames)
	}
	if contains(b.Usernames, "company") {
		t.Errorf("mail domain reported as a username: %v", b.Usernames)
	}
	if !contains(b.Devices, "SERVER-01") {
		t.Errorf("devices = %v, want SERVER-01", b.Devices)
	}
	if !contains(b.Devices, "server") {
		t.Errorf("devices = %v, want vocabulary match 'server'", b.Devices)
	}
	if !contains(b.ErrorCodes, "500") {
		t.Errorf("error codes = %v, want 500", b.ErrorCodes)
	}
	if len(b.Emails) != 1 || b.Emails[0] != "john.smith@company.com" {
		t.Errorf("emails = %v", b.Emails)
	}
}

func TestExtractWiFiScenario(t *testing.T) {
	b := Default().Extract(`I cannot connect to the company WiFi network. The error shows "Network is unreachable". I'm on my MacBook and tried rebooting but still no connection.`)

	if !contains(b.Devices, "macbook") {
		t.Errorf("devices = %v, want macbook", b.Devices)
	}
	if len(b.ErrorCodes) != 0 {
		t.Errorf("error codes = %v, want none", b.ErrorCodes)
	}
}

func TestExtractEmpty(t *testing.T) {
	b := Default().Extract("")

	if !b.Empty() {
		t.Errorf("expected empty bundle, got %+v", b)
	}
	for _, k := range Kinds {
		if b.Get(k) == nil {
			t.Errorf("%s list is nil, want empty", k)
		}
	}

	data, err := json.Marshal(b)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"usernames":[],"devices":[],"error_codes":[],"emails":[],"urls":[],"file_paths":[]}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestUsernames(t *testing.T) {
	e := Default()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"mention", "ping @Alice about it", []string{"alice"}},
		{"key value", "user: bob and USER=Carol", []string{"bob", "carol"}},
		{"known domain", "mail mary_jane@corp.net", []string{"mary_jane"}},
		{"unknown domain", "mail someone@example.org", []string{}},
		{"duplicates merged", "@Dave @dave user=DAVE", []string{"dave"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Usernames(tt.in)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("Usernames(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDevices(t *testing.T) {
	e := Default()

	got := e.Devices("My MacBook Pro and the HP printer near ROUTER-7 keep failing")
	for _, want := range []string{"macbook pro", "printer", "HP", "ROUTER-7"} {
		if !contains(got, want) {
			t.Errorf("devices = %v, missing %q", got, want)
		}
	}
	if contains(got, "My") {
		t.Errorf("capitalised word reported as device: %v", got)
	}

	if got := e.Devices("switches and laptops"); len(got) != 0 {
		t.Errorf("vocabulary nouns must match whole words, got %v", got)
	}
}

func TestErrorCodes(t *testing.T) {
	e := Default()

	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"hex literal", "error code 0x80070005 when authenticating", []string{"0x80070005"}},
		{"keyword code", "got ERR: 1F4 and Error E1234", []string{"1F4", "E1234"}},
		{"status codes", "server returned 503 then 404, not 200", []string{"404", "503"}},
		{"keyword without code", "error deleting file", []string{}},
		{"vocabulary", "machine hit a bsod", []string{"BSOD"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.ErrorCodes(tt.in)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("ErrorCodes(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmailsCaseSensitive(t *testing.T) {
	got := Emails("Contact A@b.com, a@b.com or a@b.com again")
	if len(got) != 2 {
		t.Fatalf("emails = %v, want 2 distinct casings", got)
	}
}

func TestURLs(t *testing.T) {
	got := URLs("see https://intranet.corp/help?id=4 and http://x.io twice http://x.io")
	want := []string{"http://x.io", "https://intranet.corp/help?id=4"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Errorf("URLs = %v, want %v", got, want)
	}
}

func TestFilePaths(t *testing.T) {
	text := `Logs at C:\Users\john\app.log and /var/log/syslog, share \\FILESRV\projects; see https://example.com/a/b and/or retry`
	got := FilePaths(text)

	for _, want := range []string{`C:\Users\john\app.log`, "/var/log/syslog,", `\\FILESRV\projects;`} {
		if !contains(got, strings.TrimRight(want, ",;")) && !contains(got, want) {
			t.Errorf("paths = %v, missing %q", got, want)
		}
	}
	for _, p := range got {
		if strings.HasPrefix(p, "//") || p == "/or" {
			t.Errorf("unexpected path %q in %v", p, got)
		}
	}
}

func TestExtractDuplicateFree(t *testing.T) {
	text := "SERVER-01 SERVER-01 server server ERROR-500 500 500 @ann @ann a@b.io a@b.io /tmp/x /tmp/x"
	b := Default().Extract(text)

	for kind, values := range b.ByKind() {
		seen := map[string]bool{}
		for _, v := range values {
			if seen[v] {
				t.Errorf("%s contains duplicate %q", kind, v)
			}
			seen[v] = true
		}
	}
}

func TestInjectedVocabulary(t *testing.T) {
	e := New(Vocabulary{
		Devices:     []string{"kiosk"},
		ErrorCodes:  []string{"e42"},
		UserDomains: []string{"acme"},
	})

	b := e.Extract("kiosk pro shows E42 for tom@acme.com")
	if !contains(b.Devices, "kiosk") || contains(b.Devices, "kiosk pro") {
		t.Errorf("devices = %v, want bare kiosk without qualifiers", b.Devices)
	}
	if !contains(b.ErrorCodes, "E42") {
		t.Errorf("error codes = %v, want E42", b.ErrorCodes)
	}
	if !contains(b.Usernames, "tom") {
		t.Errorf("usernames = %v, want tom", b.Usernames)
	}
}

func TestSummary(t *testing.T) {
	if got := NewBundle().Summary(); !strings.Contains(got, "No specific entities") {
		t.Errorf("empty summary = %q", got)
	}

	b := NewBundle()
	b.Devices = []string{"laptop"}
	if got := b.Summary(); got != "  • devices: laptop" {
		t.Errorf("summary = %q", got)
	}
}
