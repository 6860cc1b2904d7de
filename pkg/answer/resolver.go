package answer

import (
	"context"
	"errors"
	"strings"
	"time"

	contextPkg "Edunabha/pkg/context"
	"Edunabha/pkg/knowledge"

	"github.com/sirupsen/logrus"
)

type Provenance string

const (
	ProvenanceRemote Provenance = "remote"
	ProvenanceLocal  Provenance = "local"
)

var ErrEmptyAnswer = errors.New("remote generator returned an empty answer")

// Generator is a remote text-generation service.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type Result struct {
	Answer     string     `json:"answer"`
	Provenance Provenance `json:"provenance"`
}

type IResolver interface {
	Resolve(ctx context.Context, question string, connectivity, remoteAvailable bool) Result
	RemoteConfigured() bool
}

type resolver struct {
	log       *logrus.Logger
	generator Generator
	local     knowledge.IKnowledgeBase
	timeout   time.Duration
}

type Option func(*resolver)

// WithTimeout bounds the single remote attempt.
func WithTimeout(timeout time.Duration) Option {
	return func(r *resolver) {
		r.timeout = timeout
	}
}

// NewResolver returns a resolver that tries generator (which may be nil)
// once and otherwise answers from local.
func NewResolver(log *logrus.Logger, generator Generator, local knowledge.IKnowledgeBase, opts ...Option) IResolver {
	if local == nil {
		local = knowledge.Default()
	}
	r := &resolver{
		log:       log,
		generator: generator,
		local:     local,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *resolver) RemoteConfigured() bool {
	return r.generator != nil
}

// Resolve never fails: when the remote attempt is skipped or fails for any
// reason the local knowledge base answers instead. The remote service is
// called at most once.
func (r *resolver) Resolve(ctx context.Context, question string, connectivity, remoteAvailable bool) Result {
	if ctx == nil {
		ctx = context.Background()
	}

	if connectivity && remoteAvailable && r.generator != nil {
		text, err := r.generate(ctx, question)
		if err == nil {
			return Result{Answer: text, Provenance: ProvenanceRemote}
		}
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Remote answer failed, falling back to offline knowledge base")
	}

	return Result{Answer: r.local.Match(question), Provenance: ProvenanceLocal}
}

func (r *resolver) generate(ctx context.Context, question string) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	text, err := r.generator.Generate(ctx, question)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}
