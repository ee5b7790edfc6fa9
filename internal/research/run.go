package research

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mkarel/prospect/internal/cite"
	"github.com/mkarel/prospect/internal/classify"
	"github.com/mkarel/prospect/internal/model"
	"github.com/mkarel/prospect/internal/registry"
	"github.com/mkarel/prospect/internal/store"
)

// run is the mutable state of one research run. It is confined to a single
// goroutine for its whole life, so no locking beyond what the store does.
type run struct {
	id       string
	o        *Orchestrator
	ctx      context.Context
	subject  model.Subject
	ledger   *cite.Ledger
	store    *store.Knowledge
	registry *registry.Registry
	logger   *zap.Logger

	// currentSourceURL is the last successfully fetched page, used as the
	// provenance fallback when the engine omits source_url from an action.
	currentSourceURL string

	iterations []model.IterationRecord
	rec        *model.IterationRecord
	before     store.Counts
	malformed  bool
	startedAt  time.Time
}

func newRun(ctx context.Context, o *Orchestrator, subject model.Subject) *run {
	ledger := cite.NewLedger()
	r := &run{
		id:        newRunID(),
		o:         o,
		ctx:       ctx,
		subject:   subject,
		ledger:    ledger,
		store:     store.New(subject, ledger, o.logger),
		registry:  registry.New(o.logger),
		startedAt: time.Now().UTC(),
	}
	r.logger = o.logger.With(zap.String("run_id", r.id))
	r.registerHandlers()
	return r
}

func (r *run) registerHandlers() {
	r.registry.Register("save_contact", r.saveContact)
	r.registry.Register("save_pain_point", r.savePainPoint)
	r.registry.Register("extract_tech_stack", r.extractTechStack)
	r.registry.Register("save_company_info", r.saveCompanyInfo)
	r.registry.Register("save_news", r.saveNews)
	r.registry.Register("download_image", r.downloadImage)
	r.registry.Register("explore_page", r.explorePage)
	r.registry.Register("search_linkedin", r.searchLinkedIn)
	r.registry.Register("search_news", r.searchNews)
}

// seedBaseline records the caller-supplied subject fields as zero-citation
// facts so the report carries them even if the web never confirms them.
func (r *run) seedBaseline() {
	if r.subject.Name == "" && r.subject.Phone == "" {
		return
	}
	contact := model.Contact{
		Name:      r.subject.Name,
		Phone:     r.subject.Phone,
		Source:    "caller input",
		SourceURL: model.SourceInput,
	}
	if err := r.store.AddContact(contact); err != nil {
		r.logger.Debug("baseline contact not recorded", zap.Error(err))
	}
}

func (r *run) beginIteration() {
	r.before = r.store.Summary()
	r.rec = &model.IterationRecord{
		Index:     len(r.iterations) + 1,
		StartedAt: time.Now().UTC(),
	}
}

func (r *run) endIteration() {
	if r.rec == nil {
		return
	}
	r.rec.Delta = r.store.Summary().Delta(r.before)
	r.iterations = append(r.iterations, *r.rec)
	r.rec = nil
}

// abortIteration flushes a half-finished iteration record so aborted runs
// still account for the iteration that failed.
func (r *run) abortIteration(cause error) {
	if r.rec == nil {
		return
	}
	if cause != nil {
		r.rec.Errors = append(r.rec.Errors, cause.Error())
	}
	r.endIteration()
}

func (r *run) recordOutcome(res registry.ExecutionResult) {
	outcome := model.ActionOutcome{
		Name:   res.Action,
		Status: string(res.Status),
	}
	if res.Err != nil {
		outcome.Error = res.Err.Error()
	}
	r.rec.Actions = append(r.rec.Actions, outcome)
}

func (r *run) result(state State, abortErr error) *RunResult {
	return &RunResult{
		RunID:          r.id,
		Subject:        r.subject,
		State:          state,
		Knowledge:      r.store,
		Ledger:         r.ledger,
		Iterations:     r.iterations,
		MissingActions: r.registry.Missing(),
		StartedAt:      r.startedAt,
		FinishedAt:     time.Now().UTC(),
		Err:            abortErr,
	}
}

// sourceURL applies the current-page fallback to an engine-supplied source.
func (r *run) sourceURL(params map[string]any) string {
	if src := registry.StringParam(params, "source_url"); src != "" {
		return src
	}
	return r.currentSourceURL
}

func (r *run) saveContact(params map[string]any) error {
	return r.store.AddContact(model.Contact{
		Name:      registry.StringParam(params, "name"),
		Title:     registry.StringParam(params, "title"),
		Email:     registry.StringParam(params, "email"),
		Phone:     registry.StringParam(params, "phone"),
		LinkedIn:  registry.StringParam(params, "linkedin"),
		SourceURL: r.sourceURL(params),
	})
}

func (r *run) savePainPoint(params map[string]any) error {
	return r.store.AddPainPoint(model.PainPoint{
		Description: registry.StringParam(params, "description"),
		Evidence:    registry.StringParam(params, "evidence"),
		SourceURL:   r.sourceURL(params),
	})
}

func (r *run) extractTechStack(params map[string]any) error {
	technologies := registry.StringsParam(params, "technologies")
	if len(technologies) == 0 {
		if single := registry.StringParam(params, "technology"); single != "" {
			technologies = []string{single}
		}
	}
	category := registry.StringParam(params, "category")
	src := r.sourceURL(params)

	var errs []error
	for _, tech := range technologies {
		if err := r.store.AddTech(model.TechStackEntry{
			Technology: tech,
			Category:   category,
			SourceURL:  src,
		}); err != nil {
			errs = append(errs, err)
		}
	}
	if len(technologies) == 0 {
		return fmt.Errorf("%w: extract_tech_stack needs technologies", model.ErrInvalidInput)
	}
	return errors.Join(errs...)
}

// saveCompanyInfo is advisory: the engine restates caller facts through it,
// so it logs and succeeds without creating a ledger entry.
func (r *run) saveCompanyInfo(params map[string]any) error {
	r.logger.Info("company info noted",
		zap.String("key", registry.StringParam(params, "key")),
		zap.String("value", registry.StringParam(params, "value")))
	return nil
}

func (r *run) saveNews(params map[string]any) error {
	return r.store.AddNews(model.NewsItem{
		Title:     registry.StringParam(params, "title"),
		Summary:   registry.StringParam(params, "summary"),
		Date:      registry.StringParam(params, "date"),
		SourceURL: r.sourceURL(params),
	})
}

func (r *run) downloadImage(params map[string]any) error {
	src := registry.StringParam(params, "url")
	if src == "" {
		return fmt.Errorf("%w: download_image needs a url", model.ErrInvalidInput)
	}
	return r.collectImage(classify.ImageRef{
		Src:     src,
		Alt:     registry.StringParam(params, "person_name"),
		Caption: registry.StringParam(params, "context"),
	})
}

func (r *run) explorePage(params map[string]any) error {
	target := registry.StringParam(params, "url")
	if target == "" {
		return fmt.Errorf("%w: explore_page needs a url", model.ErrInvalidInput)
	}
	return r.explore(target, "webpage")
}

// searchLinkedIn records the lookup as an explored source so the engine does
// not request it again. Actual LinkedIn scraping is out of reach without
// authentication, so the marker is all that is stored.
func (r *run) searchLinkedIn(params map[string]any) error {
	return r.store.AddExploredSource("LinkedIn: "+r.companyParam(params), "social")
}

func (r *run) searchNews(params map[string]any) error {
	return r.store.AddExploredSource("News search: "+r.companyParam(params), "news")
}

func (r *run) companyParam(params map[string]any) string {
	if c := registry.StringParam(params, "company"); c != "" {
		return c
	}
	if c := registry.StringParam(params, "company_name"); c != "" {
		return c
	}
	return r.subject.DisplayName()
}

// explore fetches a page, marks it explored whether or not the fetch worked,
// feeds its text back into the snapshot, and harvests likely-person images.
func (r *run) explore(target, category string) error {
	target = r.resolveTarget(target)

	if r.store.HasExplored(target) {
		r.logger.Info("skipping already explored source", zap.String("url", target))
		r.rec.Skipped = append(r.rec.Skipped, target)
		return nil
	}

	content, err := r.o.fetcher.Fetch(r.ctx, target)

	// Explored even on failure: a dead URL should never be requested twice.
	r.store.AddExploredSource(target, category)
	if err != nil {
		return err
	}
	if content.FinalURL != target {
		r.store.AddExploredSource(content.FinalURL, category)
	}

	r.currentSourceURL = content.FinalURL
	r.store.SetPageExcerpt(content.FinalURL, content.Text, r.o.config.PageTextLimit)
	r.rec.Explored = append(r.rec.Explored, content.FinalURL)

	for _, ref := range classify.ExtractImages(content.HTML, content.FinalURL) {
		verdict := classify.Classify(ref.Src, ref.Alt, ref.Caption)
		if !verdict.IsPersonLikely {
			continue
		}
		if err := r.collectImage(ref); err != nil {
			r.logger.Warn("image not collected",
				zap.String("src", ref.Src), zap.Error(err))
		}
	}
	return nil
}

// resolveTarget joins site-relative paths against the subject's website.
func (r *run) resolveTarget(target string) string {
	if strings.HasPrefix(target, "/") && r.subject.Website != "" {
		return strings.TrimRight(r.subject.Website, "/") + target
	}
	return target
}

// collectImage downloads one likely-person image (when downloads are
// enabled) and records it as a cited fact either way.
func (r *run) collectImage(ref classify.ImageRef) error {
	name, title := classify.PersonInfo(ref.Alt, ref.Caption)
	img := model.Image{
		PersonName:  name,
		PersonTitle: title,
		AltText:     ref.Alt,
		PageContext: ref.Caption,
		SourceURL:   ref.Src,
	}

	if r.o.images != nil {
		path, err := r.o.images.Download(r.ctx, ref.Src, r.subject.DisplayName())
		if err != nil {
			return err
		}
		img.Filename = path
	}

	if err := r.store.AddImage(img); err != nil {
		return err
	}
	if r.o.images != nil {
		if err := r.o.images.AppendManifest(r.subject.DisplayName(), img); err != nil {
			r.logger.Warn("manifest not updated", zap.Error(err))
		}
	}
	return nil
}
