package i18n

import "testing"

func TestResolveLocale(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{input: "", want: "en-US"},
		{input: "en-US", want: "en-US"},
		{input: "pt-BR", want: "pt-BR"},
		{input: "pt", want: "pt-BR"},
		{input: "fr-CH, pt;q=0.9", want: "pt-BR"},
		{input: "ja", want: "en-US"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ResolveLocale(tt.input); got != tt.want {
				t.Fatalf("ResolveLocale(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestGetCatalogFallback(t *testing.T) {
	base := GetCatalog("en-US")
	if base == nil {
		t.Fatal("expected base catalog")
	}
	if fallback := GetCatalog("missing-locale"); fallback != base {
		t.Fatal("expected fallback to en-US catalog")
	}
	if got := GetCatalog("pt").Locale(); got != "pt-BR" {
		t.Fatalf("expected pt-BR catalog, got %q", got)
	}
}

func TestFormatRendersMetadata(t *testing.T) {
	metadata := map[string]string{"limit": "count", "actual": "5000", "max": "1000"}

	if got := GetCatalog("en-US").Format(CodeDiceResourceLimit, metadata); got != "Dice count 5000 exceeds the limit of 1000" {
		t.Fatalf("unexpected en-US message: %q", got)
	}
	if got := GetCatalog("pt-BR").Format(CodeDiceResourceLimit, metadata); got != "O valor 5000 para count excede o limite de 1000" {
		t.Fatalf("unexpected pt-BR message: %q", got)
	}
}

func TestFormatFallbacks(t *testing.T) {
	cat := GetCatalog("en-US")
	if got := cat.Format("NOT_A_CODE", nil); got != "NOT_A_CODE" {
		t.Fatalf("expected code fallback, got %q", got)
	}
	if got := cat.Format(CodeDiceInvalidMode, nil); got != "Unsupported roll mode " {
		t.Fatalf("expected missing metadata to render empty, got %q", got)
	}
}

func TestEveryLocaleCoversEveryCode(t *testing.T) {
	base := localeMessages[BaseLocale]
	for locale, messages := range localeMessages {
		for code := range base {
			if _, ok := messages[code]; !ok {
				t.Fatalf("locale %s is missing %s", locale, code)
			}
		}
	}
}
