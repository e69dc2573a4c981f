package bootstrap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kirillkom/panchayat-sahayika/internal/config"
	"github.com/kirillkom/panchayat-sahayika/internal/core/usecase"
)

func TestApplyRankingOverridesOnlySetFields(t *testing.T) {
	strong := 0.7
	lambda := 0.5
	got := applyRanking(usecase.DefaultRankingParams(), config.Ranking{
		StrongScore:  &strong,
		MMRLambda:    &lambda,
		TriggerWords: []string{"awas"},
	})
	def := usecase.DefaultRankingParams()
	if got.StrongScore != 0.7 || got.MMRLambda != 0.5 {
		t.Fatalf("expected overrides applied, got %+v", got)
	}
	if got.WeakScore != def.WeakScore || got.TokenBoost != def.TokenBoost {
		t.Fatalf("expected untouched defaults, got %+v", got)
	}
	if len(got.TriggerWords) != 1 || got.TriggerWords[0] != "awas" {
		t.Fatalf("expected trigger words replaced, got %v", got.TriggerWords)
	}
}

func TestRankingParamsFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ranking.yaml")
	if err := os.WriteFile(path, []byte("weak_score: 0.3\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	p, err := rankingParams(path)
	if err != nil {
		t.Fatalf("rankingParams() error = %v", err)
	}
	if p.WeakScore != 0.3 || p.StrongScore != usecase.DefaultRankingParams().StrongScore {
		t.Fatalf("unexpected params: %+v", p)
	}
}

func TestRankingParamsMissingFile(t *testing.T) {
	if _, err := rankingParams(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing ranking file")
	}
}

func TestResilienceConfigKeepsBreakerDefaults(t *testing.T) {
	got := resilienceConfig(config.Resilience{RetryMaxAttempts: 5, BreakerEnabled: true})
	if got.RetryMaxAttempts != 5 || !got.BreakerEnabled || got.BreakerMinRequests == 0 || got.RetryMultiplier != 2 {
		t.Fatalf("unexpected resilience config: %+v", got)
	}
}

func TestSchemeSourceSelection(t *testing.T) {
	for _, name := range []string{"json", "xlsx", "postgres"} {
		src, err := schemeSource(config.Config{SchemeSource: name, SchemeSourcePath: "x"}, nil)
		if err != nil || src == nil {
			t.Fatalf("schemeSource(%s) = %v, %v", name, src, err)
		}
	}
	if _, err := schemeSource(config.Config{SchemeSource: "csv"}, nil); err == nil {
		t.Fatalf("expected error for unknown source")
	}
}
