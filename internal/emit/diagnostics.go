package emit

import (
	"io"

	"github.com/fatih/color"

	"github.com/MikeSquared-Agency/Appraise/internal/evaluator"
)

// Diagnostics reports failures and the batch verdict to a terminal.
type Diagnostics struct {
	w      io.Writer
	failed *color.Color
	muted  *color.Color
	ok     *color.Color
}

func NewDiagnostics(w io.Writer, colored bool) *Diagnostics {
	d := &Diagnostics{
		w:      w,
		failed: color.New(color.FgRed),
		muted:  color.New(color.FgYellow),
		ok:     color.New(color.FgGreen),
	}
	if !colored {
		d.failed.DisableColor()
		d.muted.DisableColor()
		d.ok.DisableColor()
	}
	return d
}

func (d *Diagnostics) HandleOutcome(o evaluator.Outcome) error {
	switch {
	case !o.Failed():
		return nil
	case o.Ignored:
		_, err := d.muted.Fprintf(d.w, "[skip] %s: %s\n", o.Identifier, o.Reason())
		return err
	default:
		_, err := d.failed.Fprintf(d.w, "[error] %s: %s\n", o.Identifier, o.Reason())
		return err
	}
}

func (d *Diagnostics) CompleteBatch(res *evaluator.BatchResult) error {
	c := d.ok
	if !res.OK() {
		c = d.failed
	}
	_, err := c.Fprintf(d.w, "[batch] %d succeeded, %d failed, %d skipped of %d\n",
		res.Succeeded, res.Failures(), res.Skipped, res.Total)
	return err
}
