package mdvtab

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"sync"

	"github.com/agentic-research/mdsql/internal/config"
	"github.com/agentic-research/mdsql/internal/markdown"
	"github.com/agentic-research/mdsql/internal/version"
	"modernc.org/sqlite"
)

func registerFunctions() error {
	if err := sqlite.RegisterDeterministicScalarFunction("md_to_html", -1, mdToHTML); err != nil {
		return err
	}
	if err := sqlite.RegisterDeterministicScalarFunction("md_version", 0, mdVersion); err != nil {
		return err
	}
	return sqlite.RegisterDeterministicScalarFunction("md_debug", 0, mdDebug)
}

// renderers caches one parser per distinct set of options.
var renderers sync.Map // config.Options -> *markdown.Parser

func renderer(optList string) (*markdown.Parser, error) {
	opts, err := config.ParseModuleArgs(strings.Split(optList, ","))
	if err != nil {
		return nil, err
	}
	if p, ok := renderers.Load(opts); ok {
		return p.(*markdown.Parser), nil
	}
	p, _ := renderers.LoadOrStore(opts, markdown.New(opts))
	return p.(*markdown.Parser), nil
}

// mdToHTML implements md_to_html(text [, options]).
func mdToHTML(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	if len(args) < 1 || len(args) > 2 {
		return nil, fmt.Errorf("md_to_html: expected 1 or 2 arguments, got %d", len(args))
	}
	text, ok := inputText(args[0])
	if !ok {
		return nil, nil
	}

	var optList string
	if len(args) == 2 && args[1] != nil {
		s, ok := args[1].(string)
		if !ok {
			return nil, fmt.Errorf("md_to_html: options must be text, got %T", args[1])
		}
		optList = s
	}

	p, err := renderer(optList)
	if err != nil {
		return nil, fmt.Errorf("md_to_html: %w", err)
	}
	html, err := p.RenderHTML(text)
	if err != nil {
		return nil, fmt.Errorf("md_to_html: %w", err)
	}
	return html, nil
}

func mdVersion(_ *sqlite.FunctionContext, _ []driver.Value) (driver.Value, error) {
	return version.String(), nil
}

func mdDebug(_ *sqlite.FunctionContext, _ []driver.Value) (driver.Value, error) {
	return version.Debug(), nil
}
