package lexer

import (
	"testing"

	"github.com/ardnew/ctrlfn/lang/token"
)

func scanAll(t *testing.T, src string) []token.Token {
	t.Helper()

	lx := New([]byte(src))

	var toks []token.Token

	for {
		tok, err := lx.Next()
		if err != nil {
			t.Fatalf("unexpected lex error: %v", err)
		}

		toks = append(toks, tok)

		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func TestLexer_Next_Keywords(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want token.Kind
	}{
		{"func", "func", token.KwFunc},
		{"let", "let", token.KwLet},
		{"return", "return", token.KwReturn},
		{"in", "in", token.KwIn},
		{"plain ident", "counter", token.Ident},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := scanAll(t, tt.src)
			if toks[0].Kind != tt.want {
				t.Errorf("expected %v, got %v", tt.want, toks[0].Kind)
			}
		})
	}
}

func TestLexer_Next_NumberLiterals(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want token.Kind
		lit  string
	}{
		{"int", "42", token.Int, "42"},
		{"float", "3.14", token.Float, "3.14"},
		{"int then range", "1..5", token.Int, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := scanAll(t, tt.src)
			if toks[0].Kind != tt.want {
				t.Errorf("expected kind %v, got %v", tt.want, toks[0].Kind)
			}
			if toks[0].Literal != tt.lit {
				t.Errorf("expected literal %q, got %q", tt.lit, toks[0].Literal)
			}
		})
	}
}

func TestLexer_Next_RangeOperatorNotConsumedAsDecimal(t *testing.T) {
	toks := scanAll(t, "1..5")

	want := []token.Kind{token.Int, token.DotDot, token.Int, token.EOF}
	if len(toks) != len(want) {
		t.Fatalf("expected %d tokens, got %d", len(want), len(toks))
	}

	for i, k := range want {
		if toks[i].Kind != k {
			t.Errorf("token %d: expected %v, got %v", i, k, toks[i].Kind)
		}
	}
}

func TestLexer_Next_StringLiteralEscapes(t *testing.T) {
	toks := scanAll(t, `"line\nbreak\ttab\"quote"`)

	if toks[0].Kind != token.String {
		t.Fatalf("expected String, got %v", toks[0].Kind)
	}

	want := "line\nbreak\ttab\"quote"
	if toks[0].Literal != want {
		t.Errorf("expected %q, got %q", want, toks[0].Literal)
	}
}

func TestLexer_Next_UnterminatedString_ReturnsError(t *testing.T) {
	lx := New([]byte(`"unterminated`))

	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestLexer_Next_Operators(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want token.Kind
	}{
		{"arrow", "->", token.Arrow},
		{"eqeq", "==", token.EqEq},
		{"noteq", "!=", token.NotEq},
		{"le", "<=", token.Le},
		{"ge", ">=", token.Ge},
		{"andand", "&&", token.AndAnd},
		{"oror", "||", token.OrOr},
		{"single amp", "&", token.Amp},
		{"single pipe", "|", token.Pipe},
		{"single bang", "!", token.Bang},
		{"single lt", "<", token.Lt},
		{"single gt", ">", token.Gt},
		{"single eq", "=", token.Assign},
		{"caret", "^", token.Caret},
		{"dollar", "$", token.Dollar},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := scanAll(t, tt.src)
			if toks[0].Kind != tt.want {
				t.Errorf("expected %v, got %v", tt.want, toks[0].Kind)
			}
		})
	}
}

func TestLexer_Next_SkipsLineAndBlockComments(t *testing.T) {
	src := `
// a line comment
42 /* a
multiline block */ 43
`
	toks := scanAll(t, src)

	want := []string{"42", "43"}
	got := make([]string, 0, 2)

	for _, tok := range toks {
		if tok.Kind == token.Int {
			got = append(got, tok.Literal)
		}
	}

	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	for i := range want {
		if got[i] != want[i] {
			t.Errorf("expected %q, got %q", want[i], got[i])
		}
	}
}

func TestLexer_Next_UnexpectedCharacter_ReturnsError(t *testing.T) {
	lx := New([]byte("@"))

	_, err := lx.Next()
	if err == nil {
		t.Fatal("expected error for unexpected character")
	}
}

func TestLexer_CheckpointRestore_ReplaysSameTokens(t *testing.T) {
	lx := New([]byte("let x = 1;"))

	first, err := lx.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cp := lx.Checkpoint()

	second, err := lx.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lx.Restore(cp)

	replayed, err := lx.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if replayed.Kind != second.Kind || replayed.Literal != second.Literal {
		t.Errorf("expected replayed token to match %+v, got %+v", second, replayed)
	}

	if first.Kind != token.KwLet {
		t.Errorf("expected first token to be 'let', got %v", first.Kind)
	}
}

func TestLexer_Next_TracksLineAndColumn(t *testing.T) {
	toks := scanAll(t, "a\nb")

	if toks[0].Pos.Line != 1 || toks[0].Pos.Column != 1 {
		t.Errorf("expected first token at 1:1, got %v", toks[0].Pos)
	}

	if toks[1].Pos.Line != 2 || toks[1].Pos.Column != 1 {
		t.Errorf("expected second token at 2:1, got %v", toks[1].Pos)
	}
}
