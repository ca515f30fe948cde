package services

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"zillow-finder/models"
	"zillow-finder/utils"
)

func newTestLogger() *utils.Logger { return utils.NewDiscardLogger() }

type fakeCompleter struct {
	reply  string
	err    error
	system string
	user   string
	calls  int
	block  bool
}

func (f *fakeCompleter) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.system, f.user = system, user
	if f.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.reply, f.err
}

func TestParseLenientJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    map[string]any
		wantErr bool
	}{
		{
			name: "plain",
			in:   `{"zipcode":"98101"}`,
			want: map[string]any{"zipcode": "98101"},
		},
		{
			name: "fenced with language",
			in:   "```json\n{\"zipcode\":\"98101\"}\n```",
			want: map[string]any{"zipcode": "98101"},
		},
		{
			name: "fenced without language",
			in:   "```\n{\"city\":\"Austin\"}\n```",
			want: map[string]any{"city": "Austin"},
		},
		{
			name: "fenced on one line",
			in:   "```{\"city\":\"Austin\"}```",
			want: map[string]any{"city": "Austin"},
		},
		{
			name: "prose around object",
			in:   `Sure! {"city":"Seattle","state":"WA"} thanks`,
			want: map[string]any{"city": "Seattle", "state": "WA"},
		},
		{
			name: "surrounding whitespace",
			in:   "\n\n  {\"state\":\"WA\"}  \n",
			want: map[string]any{"state": "WA"},
		},
		{name: "no braces", in: "I could not understand that.", wantErr: true},
		{name: "empty", in: "", wantErr: true},
		{name: "broken object", in: `{"city": "Seattle"`, wantErr: true},
		{name: "array is not an object", in: `["Seattle"]`, wantErr: true},
		{name: "reversed braces", in: `} nothing {`, wantErr: true},
		{name: "stray closing brace", in: `{"city":"Seattle"} }`, wantErr: true},
		{name: "stray closing bracket", in: `{"city":"Seattle"}]`, wantErr: true},
		{name: "two objects", in: `{"city":"Seattle"} {"city":"Austin"}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseLenientJSON(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInterpretBuildsFilter(t *testing.T) {
	fc := &fakeCompleter{reply: "```json\n{\"homeType\":\"apartments\",\"zipcode\":98101,\"city\":\" Seattle \",\"state\":\"WA\"}\n```"}
	interp := NewInterpreter(fc, time.Second, newTestLogger())

	f, err := interp.Interpret(context.Background(), "rent apartments in 98101")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}

	want := models.StructuredFilter{HomeType: "apartments", Zipcode: "98101", City: "Seattle", State: "WA"}
	if f != want {
		t.Errorf("got %+v, want %+v", f, want)
	}
	if fc.user != "rent apartments in 98101" {
		t.Errorf("user message: got %q", fc.user)
	}
	if !strings.Contains(fc.system, "homeType, zipcode, city, state") || !strings.Contains(fc.system, "'homes'") {
		t.Errorf("system instruction missing keys or default: %q", fc.system)
	}
}

func TestInterpretDefaultsHomeType(t *testing.T) {
	interp := NewInterpreter(&fakeCompleter{reply: `{"city":"Boise"}`}, 0, newTestLogger())

	f, err := interp.Interpret(context.Background(), "homes in Boise")
	if err != nil {
		t.Fatalf("Interpret: %v", err)
	}
	if f.HomeType != models.DefaultHomeType {
		t.Errorf("HomeType: got %q, want %q", f.HomeType, models.DefaultHomeType)
	}
}

func TestInterpretFailures(t *testing.T) {
	tests := []struct {
		name  string
		query string
		fc    *fakeCompleter
		calls int
	}{
		{name: "service error", query: "homes", fc: &fakeCompleter{err: errors.New("503")}, calls: 1},
		{name: "no json", query: "homes", fc: &fakeCompleter{reply: "no idea"}, calls: 1},
		{name: "empty object", query: "homes", fc: &fakeCompleter{reply: "{}"}, calls: 1},
		{name: "blank query", query: "   ", fc: &fakeCompleter{reply: `{"city":"x"}`}, calls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			interp := NewInterpreter(tt.fc, time.Second, newTestLogger())
			_, err := interp.Interpret(context.Background(), tt.query)
			if !errors.Is(err, ErrNotInterpretable) {
				t.Fatalf("expected ErrNotInterpretable, got %v", err)
			}
			if tt.fc.calls != tt.calls {
				t.Errorf("service calls: got %d, want %d", tt.fc.calls, tt.calls)
			}
		})
	}
}

func TestInterpretTimeout(t *testing.T) {
	fc := &fakeCompleter{block: true}
	interp := NewInterpreter(fc, 20*time.Millisecond, newTestLogger())

	_, err := interp.Interpret(context.Background(), "homes in Reno")
	if !errors.Is(err, ErrNotInterpretable) {
		t.Fatalf("expected ErrNotInterpretable, got %v", err)
	}
	if fc.calls != 1 {
		t.Errorf("interpreter must not retry, got %d calls", fc.calls)
	}
}
