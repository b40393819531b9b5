package loader

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"

	"github.com/vango-dev/enhance/internal/errors"
	"github.com/vango-dev/enhance/pkg/component"
)

// Load compiles every script from sources into a new registry. Sources are
// read in order and a tag may only be defined once across all of them.
func Load(ctx context.Context, sources ...Source) (*component.Registry, error) {
	reg := component.NewRegistry()
	for _, src := range sources {
		if err := LoadInto(ctx, reg, src); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoadInto compiles the scripts of one source into reg.
func LoadInto(ctx context.Context, reg *component.Registry, src Source) error {
	scripts, err := src.Scripts(ctx)
	if err != nil {
		return errors.New("E200").
			Wrap(err).
			WithDetail(fmt.Sprintf("Could not read components from %s.", src.Name()))
	}

	for _, s := range scripts {
		fn, err := Compile(s)
		if err != nil {
			return err
		}
		if err := reg.Register(s.Tag, fn); err != nil {
			return registerError(s, err)
		}
	}

	slog.Debug("components loaded", "source", src.Name(), "count", len(scripts))
	return nil
}

func registerError(s Script, err error) error {
	var dup *component.DuplicateComponentError
	if stderrors.As(err, &dup) {
		return errors.New("E202").
			Wrap(err).
			WithSuggestion(fmt.Sprintf("Rename or remove %s.", s.Origin))
	}

	var invalid *component.InvalidTagError
	if stderrors.As(err, &invalid) {
		return errors.New("E203").
			Wrap(err).
			WithSuggestion(fmt.Sprintf("Rename %s so the file name contains a hyphen.", s.Origin))
	}

	return errors.FromError(err, "E201")
}
