package translator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/text/language"

	"github.com/rasterloc/rasterloc/internal/region"
)

// Stub is an offline translator that brackets each string with the target
// language prefix, e.g. "Save" -> "[IT: Save]". It keeps the pipeline fully
// runnable without credentials and makes localized output visually obvious
// in review packages.
type Stub struct{}

// Translate returns bracket-prefixed copies of the input regions.
func (s *Stub) Translate(_ context.Context, regions []region.TextRegion, _, target language.Tag) ([]region.TextRegion, error) {
	base, _ := target.Base()
	prefix := strings.ToUpper(base.String())

	out := make([]region.TextRegion, 0, len(regions))
	for _, r := range regions {
		out = append(out, r.WithText(fmt.Sprintf("[%s: %s]", prefix, r.Text)))
	}
	return out, nil
}
