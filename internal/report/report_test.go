package report_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/nhle/listmirror/internal/model"
	"github.com/nhle/listmirror/internal/report"
)

func TestRenderSummarizesAllLists(t *testing.T) {
	out := report.Render([]model.ListResult{
		{
			List:         "alpha",
			UnitsFetched: 12,
			UnitsChanged: 3,
			Rebuilt:      true,
			ArtifactPath: "/mail/alpha.mbox",
		},
		{List: "beta", UnitsFetched: 1},
		{List: "gamma", Err: errors.New("credential lookup failed")},
	})

	for _, want := range []string{
		"synced 3 lists: 13 fetched, 3 changed, 1 rebuilt",
		"alpha",
		"/mail/alpha.mbox",
		"beta",
		"up to date",
		"gamma",
		"credential lookup failed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEmptyRun(t *testing.T) {
	out := report.Render(nil)
	if !strings.Contains(out, "synced 0 lists") {
		t.Errorf("unexpected summary for empty run:\n%s", out)
	}
}
