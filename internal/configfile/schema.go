package configfile

import (
	"bytes"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/spf13/afero"

	"github.com/thoreinstein/cairn/internal/errors"
	"github.com/thoreinstein/cairn/internal/paths"
	"github.com/thoreinstein/cairn/internal/validator"
	"github.com/thoreinstein/cairn/pkg/fileutil"
)

const schemaBaseURL = "https://schemas.cairn.dev"

// Validators holds the compiled schemas of one config definition.
type Validators struct {
	name     string
	versions []int
	compiled map[int]*jsonschema.Schema
	latest   map[string]any
}

func compileValidators(name string, schemas []Schema) (*Validators, error) {
	v := &Validators{
		name:     name,
		compiled: make(map[int]*jsonschema.Schema, len(schemas)),
		latest:   schemas[len(schemas)-1].Document,
	}
	for _, s := range schemas {
		data, err := json.Marshal(s.Document)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s schema v%d", name, s.Version)
		}

		url := fmt.Sprintf("%s/%s/v%d.json", schemaBaseURL, name, s.Version)
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft7
		if err := c.AddResource(url, bytes.NewReader(data)); err != nil {
			return nil, errors.Wrapf(err, "adding %s schema v%d", name, s.Version)
		}
		sch, err := c.Compile(url)
		if err != nil {
			return nil, errors.Wrapf(err, "compiling %s schema v%d", name, s.Version)
		}
		v.compiled[s.Version] = sch
		v.versions = append(v.versions, s.Version)
	}
	return v, nil
}

// LatestVersion returns the highest version the validators accept.
func (v *Validators) LatestVersion() int {
	return v.versions[len(v.versions)-1]
}

// Versions returns every version the validators accept, in ascending order.
func (v *Validators) Versions() []int {
	return append([]int(nil), v.versions...)
}

// LatestSchema returns the JSON Schema document of the latest version.
func (v *Validators) LatestSchema() map[string]any {
	return v.latest
}

// ValidateAll checks a config against the schema of the version it
// declares. A missing or unknown version is reported at /version. The
// returned error is a *SchemaError without a path.
func (v *Validators) ValidateAll(data any) error {
	return v.asError(v.checkAll(data), StageStructure)
}

// ValidateLatest checks a config against the latest schema only. The
// returned error is a *SchemaError without a path.
func (v *Validators) ValidateLatest(data any) error {
	return v.asError(v.checkLatest(data), StageStructure)
}

func (v *Validators) asError(result *validator.Result, stage SchemaStage) error {
	if !result.HasErrors() {
		return nil
	}
	return &SchemaError{
		Name:          v.name,
		Stage:         stage,
		LatestVersion: v.LatestVersion(),
		Issues:        result,
	}
}

func (v *Validators) checkAll(data any) *validator.Result {
	result := &validator.Result{}

	m, ok := data.(map[string]any)
	if !ok {
		result.AddError("/", "config must be a mapping", nil)
		return result
	}

	ver, err := parseVersion(m["version"])
	if err != nil {
		result.AddError("/version", err.Error(), nil)
		return result
	}
	sch, ok := v.compiled[ver]
	if !ok {
		result.AddError("/version",
			fmt.Sprintf("unknown version %d, expected one of %v", ver, v.versions), nil)
		return result
	}

	validate(sch, data, result)
	return result
}

func (v *Validators) checkLatest(data any) *validator.Result {
	result := &validator.Result{}
	validate(v.compiled[v.LatestVersion()], data, result)
	return result
}

func validate(sch *jsonschema.Schema, data any, result *validator.Result) {
	doc, err := toJSONValue(data)
	if err != nil {
		result.AddError("/", err.Error(), nil)
		return
	}

	err = sch.Validate(doc)
	if err == nil {
		return
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		result.AddError("/", err.Error(), nil)
		return
	}
	collectLeaves(ve, result)
}

// collectLeaves reports the most specific causes of a validation failure.
func collectLeaves(ve *jsonschema.ValidationError, result *validator.Result) {
	if len(ve.Causes) == 0 {
		field := ve.InstanceLocation
		if field == "" {
			field = "/"
		}
		result.AddError(field, ve.Message, nil)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, result)
	}
}

// toJSONValue converts decoded YAML into the value space of encoding/json,
// which is what the schema validator understands.
func toJSONValue(data any) (any, error) {
	raw, err := json.Marshal(plain(data))
	if err != nil {
		return nil, errors.Wrap(err, "converting config to JSON")
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, errors.Wrap(err, "converting config to JSON")
	}
	return out, nil
}

// plain rewrites maps with non-string keys into map[string]any.
func plain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			t[k] = plain(val)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = plain(val)
		}
		return out
	case []any:
		for i, val := range t {
			t[i] = plain(val)
		}
		return t
	default:
		return v
	}
}

// SchemaStage tells where in the load pipeline a config was rejected.
type SchemaStage int

const (
	// StageStructure means the file does not match the schema of its version.
	StageStructure SchemaStage = iota
	// StageMigration means the file was valid but its migrated form is not.
	StageMigration
	// StageSemantic means the file matches the latest schema but breaks a
	// rule the schema cannot express.
	StageSemantic
)

func (s SchemaStage) String() string {
	switch s {
	case StageStructure:
		return "structure"
	case StageMigration:
		return "migration"
	case StageSemantic:
		return "semantic"
	default:
		return "unknown"
	}
}

// SchemaError describes a config file that cannot be used.
type SchemaError struct {
	Name          string
	Path          string
	Stage         SchemaStage
	LatestVersion int
	Issues        *validator.Result

	// Text is the migrated config for StageMigration failures.
	Text string

	// Cause is the semantic validator's error for StageSemantic failures.
	Cause error
}

func (e *SchemaError) Error() string {
	var b strings.Builder
	switch e.Stage {
	case StageMigration:
		fmt.Fprintf(&b, "invalid %s config%s after migrating to version %d. Errors:\n%s",
			e.Name, e.at(), e.LatestVersion, e.details())
		if e.Text != "" {
			fmt.Fprintf(&b, "\n\nConfig after migration:\n%s", e.Text)
		}
		b.WriteString("\nThe file was not changed. Fix it by hand before running the command again.")
	case StageSemantic:
		fmt.Fprintf(&b, "invalid %s config%s:\n%s", e.Name, e.at(), e.details())
	default:
		fmt.Fprintf(&b, "invalid %s config%s. Expected version %d. Errors:\n%s",
			e.Name, e.at(), e.LatestVersion, e.details())
	}
	return b.String()
}

func (e *SchemaError) at() string {
	if e.Path == "" {
		return ""
	}
	return " at " + e.Path
}

func (e *SchemaError) details() string {
	var parts []string
	if s := e.Issues.String(); s != "" {
		parts = append(parts, s)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, "\n")
}

func (e *SchemaError) Unwrap() error {
	return errors.ErrInvalidConfig
}

// schemaFile returns where the schema of a config living in configDir goes.
func schemaFile(configDir, schemaDir, name string) string {
	dir := schemaDir
	if dir == "" {
		dir = paths.SchemasDirName
	}
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(configDir, dir)
	}
	return filepath.Join(dir, name+".json")
}

// schemaRef returns the schema path relative to the config directory, with
// forward slashes so editors on every platform resolve it.
func schemaRef(configDir, schemaPath string) string {
	rel, err := filepath.Rel(configDir, schemaPath)
	if err != nil {
		return filepath.ToSlash(schemaPath)
	}
	return filepath.ToSlash(rel)
}

// writeSchemaFile writes doc to path unless the file already holds it.
func writeSchemaFile(fs afero.Fs, path string, doc map[string]any) (bool, error) {
	data, err := fileutil.MarshalJSON(doc)
	if err != nil {
		return false, errors.Wrap(err, "encoding schema")
	}

	existing, err := afero.ReadFile(fs, path)
	if err == nil && bytes.Equal(existing, data) {
		return false, nil
	}

	if err := fs.MkdirAll(filepath.Dir(path), paths.DefaultDirPerm); err != nil {
		return false, errors.Wrap(err, "creating schema directory")
	}
	if err := fileutil.AtomicWriteFile(fs, path, data, fileutil.DefaultFilePerm); err != nil {
		return false, errors.Wrapf(err, "writing schema %s", path)
	}
	return true, nil
}

// propertyDocs renders the properties of a schema as comment lines.
func propertyDocs(doc map[string]any, depth int) []string {
	props, _ := doc["properties"].(map[string]any)
	required := map[string]bool{}
	if req, ok := doc["required"].([]any); ok {
		for _, r := range req {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}
	if req, ok := doc["required"].([]string); ok {
		for _, s := range req {
			required[s] = true
		}
	}

	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "version" || names[j] == "version" {
			return names[i] == "version"
		}
		return names[i] < names[j]
	})

	var lines []string
	for _, name := range names {
		p, _ := props[name].(map[string]any)
		lines = append(lines, propertyLine(name, p, required[name], depth))
		lines = append(lines, propertyDocs(p, depth+1)...)
		if ap, ok := p["additionalProperties"].(map[string]any); ok {
			lines = append(lines, propertyLine("<name>", ap, false, depth+1))
			lines = append(lines, propertyDocs(ap, depth+2)...)
		}
		if items, ok := p["items"].(map[string]any); ok {
			lines = append(lines, propertyDocs(items, depth+1)...)
		}
	}
	return lines
}

func propertyLine(name string, p map[string]any, required bool, depth int) string {
	var b strings.Builder
	b.WriteString("# ")
	b.WriteString(strings.Repeat("  ", depth))
	b.WriteString(name)

	typ := schemaType(p["type"])
	switch {
	case typ != "" && required:
		fmt.Fprintf(&b, " (%s, required)", typ)
	case typ != "":
		fmt.Fprintf(&b, " (%s)", typ)
	case required:
		b.WriteString(" (required)")
	}
	if desc, ok := p["description"].(string); ok && desc != "" {
		b.WriteString(": ")
		b.WriteString(desc)
	}
	return b.String()
}

func schemaType(t any) string {
	switch v := t.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, p := range v {
			parts = append(parts, fmt.Sprint(p))
		}
		return strings.Join(parts, " | ")
	case []string:
		return strings.Join(v, " | ")
	default:
		return ""
	}
}
