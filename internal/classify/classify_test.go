package classify

import "testing"

func TestClassify(t *testing.T) {
	tests := []struct {
		title, desc string
		want        Category
	}{
		{"Stocks slide as inflation fears return", "Investors sold shares after the central bank held interest rates", Business},
		{"Box office: new superhero movie tops charts", "The film earned more than expected in its premiere weekend", Entertainment},
		{"Measles outbreak spreads", "Hospital officials urge parents to vaccinate; the vaccine is free", Health},
		{"NASA telescope spots distant planet", "Researchers say the study changes what we know about space", Science},
		{"Late goal wins the championship", "The coach praised the league leaders after the match", Sports},
		{"Apple unveils new iPhone chip", "The smartphone maker bets on artificial intelligence features", Technology},
		{"Local council meets on Tuesday", "Residents discussed parking", General},
		{"", "", General},
	}
	for _, tt := range tests {
		if got := Classify(tt.title, tt.desc); got != tt.want {
			t.Errorf("Classify(%q) = %s, want %s", tt.title, got, tt.want)
		}
	}
}

func TestClassifyTitleWeighsDouble(t *testing.T) {
	// one title hit (2) beats one description hit (1)
	got := Classify("Tennis star withdraws", "Shares in the sponsor fell")
	if got != Sports {
		t.Errorf("expected Sports, got %s", got)
	}
}

func TestShortKeywordsMatchWhole(t *testing.T) {
	// "ai" must not match "said", "aid" or "air"
	if got := Classify("Officials said aid arrived by air", ""); got != General {
		t.Errorf("expected General, got %s", got)
	}
	if got := Classify("New AI model released", ""); got != Technology {
		t.Errorf("expected Technology, got %s", got)
	}
}

func TestTieGoesToFirstCategory(t *testing.T) {
	// one Business keyword and one Sports keyword in the title
	if got := Classify("Bank sponsors football", ""); got != Business {
		t.Errorf("expected Business on a tie, got %s", got)
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		in      string
		want    Category
		wantErr bool
	}{
		{"tech", Technology, false},
		{"BIZ", Business, false},
		{" science ", Science, false},
		{"top", General, false},
		{"sports", Sports, false},
		{"gossip", "", true},
	}
	for _, tt := range tests {
		got, err := Resolve(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("Resolve(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := tokenize("Hello, World! It's 2025.")
	want := []string{"hello", "world", "it's", "2025"}
	if len(got) != len(want) {
		t.Fatalf("tokenize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
