package main

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"telugu-assistant/pkg/registry"
)

// Field is one struct field derived from a schema property.
type Field struct {
	Name     string
	Type     string
	JSONName string
	Required bool
	Comment  string
}

// WorkerData feeds the templates.
type WorkerData struct {
	ID           string
	Name         string
	Description  string
	PackageName  string
	TaskType     string
	Dir          string
	InputFields  []Field
	OutputFields []Field
	ErrorCodes   []string
}

func newWorkerData(a *registry.Activity) WorkerData {
	return WorkerData{
		ID:           a.ID,
		Name:         a.DisplayName,
		Description:  a.Description,
		PackageName:  packageName(a.ID),
		TaskType:     a.TaskType,
		Dir:          categoryDir(a.Category),
		InputFields:  schemaFields(a.InputSchema),
		OutputFields: schemaFields(a.OutputSchema),
		ErrorCodes:   a.ErrorCodes,
	}
}

// schemaFields lists the schema properties sorted by name.
func schemaFields(schema map[string]interface{}) []Field {
	props, _ := schema["properties"].(map[string]interface{})
	required := map[string]bool{}
	if list, ok := schema["required"].([]interface{}); ok {
		for _, r := range list {
			if s, ok := r.(string); ok {
				required[s] = true
			}
		}
	}

	fields := make([]Field, 0, len(props))
	for name, raw := range props {
		prop, _ := raw.(map[string]interface{})
		desc, _ := prop["description"].(string)
		fields = append(fields, Field{
			Name:     fieldName(name),
			Type:     goType(prop),
			JSONName: name,
			Required: required[name],
			Comment:  desc,
		})
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i].JSONName < fields[j].JSONName })
	return fields
}

func goType(prop map[string]interface{}) string {
	switch prop["type"] {
	case "string":
		if prop["format"] == "date-time" {
			return "time.Time"
		}
		return "string"
	case "integer":
		return "int"
	case "number":
		return "float64"
	case "boolean":
		return "bool"
	case "object":
		return "map[string]interface{}"
	case "array":
		items, _ := prop["items"].(map[string]interface{})
		if items == nil {
			return "[]interface{}"
		}
		return "[]" + goType(items)
	default:
		return "interface{}"
	}
}

var initialisms = []string{"Id", "Url", "Jti", "Arn"}

// fieldName exports a camelCase JSON name: userId -> UserID.
func fieldName(jsonName string) string {
	if jsonName == "" {
		return jsonName
	}
	name := strings.ToUpper(jsonName[:1]) + jsonName[1:]
	for _, in := range initialisms {
		if strings.HasSuffix(name, in) {
			name = strings.TrimSuffix(name, in) + strings.ToUpper(in)
		}
	}
	return name
}

func packageName(id string) string {
	return strings.ReplaceAll(id, "-", "")
}

// categoryDir maps registry categories to directories under internal/workers.
func categoryDir(category string) string {
	switch category {
	case "authentication":
		return "auth"
	case "notification", "email":
		return "communication"
	default:
		return strings.ToLower(category)
	}
}

func usesTime(fields ...[]Field) bool {
	for _, list := range fields {
		for _, f := range list {
			if f.Type == "time.Time" {
				return true
			}
		}
	}
	return false
}

var funcs = template.FuncMap{
	"usesTime": func(d WorkerData) bool { return usesTime(d.InputFields, d.OutputFields) },
}

var templates = map[string]string{
	"handler.go":      handlerTemplate,
	"models.go":       modelsTemplate,
	"handler_test.go": testTemplate,
}

// Render returns the gofmt'ed scaffold keyed by file name.
func Render(data WorkerData) (map[string][]byte, error) {
	out := make(map[string][]byte, len(templates))
	for name, text := range templates {
		tmpl, err := template.New(name).Funcs(funcs).Parse(text)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, data); err != nil {
			return nil, fmt.Errorf("render %s: %w", name, err)
		}
		src, err := format.Source(buf.Bytes())
		if err != nil {
			return nil, fmt.Errorf("format %s: %w", name, err)
		}
		out[name] = src
	}
	return out, nil
}

// Write renders the scaffold into root/<dir>/<id>. Existing files are left
// alone unless force is set.
func Write(root string, data WorkerData, force bool) ([]string, error) {
	files, err := Render(data)
	if err != nil {
		return nil, err
	}

	dir := filepath.Join(root, data.Dir, data.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var written []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil && !force {
			return written, fmt.Errorf("%s already exists (use -force to overwrite)", path)
		}
		if err := os.WriteFile(path, files[name], 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

const handlerTemplate = `// internal/workers/{{ .Dir }}/{{ .ID }}/handler.go
package {{ .PackageName }}

import (
	"context"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/workers/jobs"
)

const TaskType = "{{ .TaskType }}"

// Service performs the {{ .Name }} activity.
type Service interface {
	Execute(ctx context.Context, input *Input) (*Output, error)
}

type Handler struct {
	config   *jobs.Config
	service  Service
	registry jobs.Validator
	errors   *apperrors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(config *jobs.Config, service Service, reg jobs.Validator, log logger.Logger) *Handler {
	log = log.With(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:   config,
		service:  service,
		registry: reg,
		errors:   apperrors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	var input Input
	if err := jobs.Decode(job, TaskType, h.registry, &input); err != nil {
		jobs.Fail(context.Background(), h.errors, client, job, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	output, err := h.execute(ctx, &input)
	if err != nil {
		jobs.Fail(context.Background(), h.errors, client, job, err)
		return
	}
	jobs.Complete(ctx, client, job, output, h.logger)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	output, err := h.service.Execute(ctx, input)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return output, nil
}
`

const modelsTemplate = `package {{ .PackageName }}
{{ if usesTime . }}
import "time"
{{ end }}
{{- if .Description }}
// Input is read from the job variables. {{ .Description }}.
{{- end }}
type Input struct {
{{- range .InputFields }}
	{{ .Name }} {{ .Type }} ` + "`" + `json:"{{ .JSONName }}{{ if not .Required }},omitempty{{ end }}"` + "`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}

type Output struct {
{{- range .OutputFields }}
	{{ .Name }} {{ .Type }} ` + "`" + `json:"{{ .JSONName }}"` + "`" + `{{ if .Comment }} // {{ .Comment }}{{ end }}
{{- end }}
}
`

const testTemplate = `package {{ .PackageName }}

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "telugu-assistant/internal/common/errors"
	"telugu-assistant/internal/common/logger"
	"telugu-assistant/internal/workers/jobs"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) Execute(ctx context.Context, input *Input) (*Output, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Output), args.Error(1)
}

func createTestHandler(t *testing.T, svc Service) *Handler {
	return NewHandler(&jobs.Config{Timeout: time.Second}, svc, nil, logger.NewTestLogger(t))
}

func TestHandler_Execute(t *testing.T) {
	svc := new(MockService)
	svc.On("Execute", mock.Anything, mock.Anything).Return(&Output{}, nil)

	out, err := createTestHandler(t, svc).execute(context.Background(), &Input{})

	require.NoError(t, err)
	assert.NotNil(t, out)
	svc.AssertExpectations(t)
}

func TestHandler_Execute_ServiceError(t *testing.T) {
	svc := new(MockService)
	svc.On("Execute", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

	_, err := createTestHandler(t, svc).execute(context.Background(), &Input{})

	stdErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInternal, stdErr.Code)
}
`
