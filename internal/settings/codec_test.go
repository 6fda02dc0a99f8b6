package settings

import (
	"strings"
	"testing"

	"github.com/tinytelemetry/logdash/internal/model"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	in := State{RefreshInterval: 90, DarkMode: true, DefaultView: model.ViewSettings}
	data, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !strings.HasPrefix(string(data), Namespace+":") {
		t.Fatalf("encoded record not namespaced:\n%s", data)
	}
	out, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if out != in {
		t.Fatalf("Decode = %+v, want %+v", out, in)
	}
}

func TestDecode_FallsBackPerKey(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		blob string
		want State
	}{
		{
			name: "missing keys",
			blob: "settings:\n  darkMode: true\n",
			want: State{RefreshInterval: 30, DarkMode: true, DefaultView: model.ViewDashboard},
		},
		{
			name: "wrong types",
			blob: "settings:\n  refreshInterval: fast\n  darkMode: \"yes\"\n  defaultView: logs\n",
			want: State{RefreshInterval: 30, DarkMode: false, DefaultView: model.ViewLogs},
		},
		{
			name: "out of range interval and unknown view",
			blob: "settings:\n  refreshInterval: 2\n  defaultView: home\n",
			want: Defaults(),
		},
		{
			name: "json blob is accepted",
			blob: `{"settings": {"refreshInterval": 10, "darkMode": true, "defaultView": "analysis"}}`,
			want: State{RefreshInterval: 10, DarkMode: true, DefaultView: model.ViewAnalysis},
		},
		{
			name: "extra keys ignored",
			blob: "settings:\n  refreshInterval: 20\n  logRetentionDays: 7\n",
			want: State{RefreshInterval: 20, DefaultView: model.ViewDashboard},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.blob))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Decode = %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestDecode_CorruptBlobYieldsDefaults(t *testing.T) {
	t.Parallel()

	got, err := Decode([]byte("settings: [unterminated"))
	if err == nil {
		t.Fatal("expected decode error for corrupt blob")
	}
	if got != Defaults() {
		t.Fatalf("Decode = %+v, want defaults", got)
	}

	s := Open(&MemoryStorage{Data: []byte("\x00\x01 not yaml: [")})
	if s.Get() != Defaults() {
		t.Fatalf("Open with corrupt data = %+v, want defaults", s.Get())
	}
}
