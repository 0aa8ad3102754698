package supervise

import (
	"testing"

	"github.com/dmorandell/innkeeper/internal/innkeeper/domain"
)

func TestDecideReadOnlyCategoriesAlwaysSend(t *testing.T) {
	for _, mode := range []Mode{ModeAutomatic, ModeSupervised} {
		for _, cat := range []domain.Category{domain.CategorySnapshot, domain.CategoryVerify} {
			out := Decide(Input{Mode: mode, Category: cat, NeedsSupervision: true})
			if !out.AutoSend || out.Status != StatusSent {
				t.Errorf("mode=%s category=%s: got %+v, want sent", mode, cat, out)
			}
		}
	}
}

func TestDecideClosedReservationAlwaysSends(t *testing.T) {
	for _, mode := range []Mode{ModeAutomatic, ModeSupervised} {
		out := Decide(Input{
			Mode:             mode,
			Category:         domain.CategoryReservation,
			SalesStage:       domain.StageClose,
			NeedsSupervision: true,
		})
		if !out.AutoSend || out.Status != StatusSent {
			t.Errorf("mode=%s: got %+v, want sent", mode, out)
		}
	}
}

func TestDecideSafeCategoryWithoutSupervision(t *testing.T) {
	out := Decide(Input{Mode: ModeSupervised, Category: domain.CategoryGreeting})
	if !out.AutoSend {
		t.Fatalf("safe category without supervision should send, got %+v", out)
	}

	out = Decide(Input{Mode: ModeSupervised, Category: domain.CategoryGreeting, NeedsSupervision: true})
	if out.AutoSend || out.Status != StatusPending {
		t.Fatalf("safe category under supervision should hold, got %+v", out)
	}
}

func TestDecideAutomaticModeDefault(t *testing.T) {
	out := Decide(Input{
		Mode:       ModeAutomatic,
		Category:   domain.CategoryReservation,
		SalesStage: domain.StageQuote,
	})
	if !out.AutoSend {
		t.Fatalf("automatic mode without supervision should send, got %+v", out)
	}
}

func TestDecideHoldsForReview(t *testing.T) {
	cases := []Input{
		{Mode: ModeAutomatic, Category: domain.CategoryReservation, SalesStage: domain.StageQuote, NeedsSupervision: true},
		{Mode: ModeSupervised, Category: domain.CategoryReservation, SalesStage: domain.StageQuote},
		{Mode: ModeSupervised, Category: domain.CategoryCancel},
	}
	for i, in := range cases {
		out := Decide(in)
		if out.AutoSend || out.Status != StatusPending {
			t.Errorf("case %d: got %+v, want pending", i, out)
		}
	}
}
