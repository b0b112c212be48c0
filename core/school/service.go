package school

import (
	"context"
	"fmt"
	"mime/multipart"
	"net/url"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/schooldash/core"
	"github.com/trezcool/schooldash/core/listing"
	"github.com/trezcool/schooldash/core/user"
)

var ErrInvalidImage = errors.New("uploaded file is not an image")

type (
	Repository interface {
		// Query counts the rows matching q.Filter and fetches q.Page of them, in one read-only transaction.
		Query(ctx context.Context, kind Kind, q listing.Query) (rows []Row, count int, err error)
		// Apply runs the mutations in one transaction and returns the key of each mutated row.
		Apply(ctx context.Context, muts ...Mutation) ([]interface{}, error)
	}

	// MediaStore keeps uploaded images.
	MediaStore interface {
		Save(fh *multipart.FileHeader) (name string, err error)
		Remove(name string) error
	}

	Service struct {
		repo        Repository
		media       MediaStore
		mailer      core.EmailService
		validate    *validator.Validate
		translator  ut.Translator
		pageSize    int
		exportLimit int
	}
)

type welcomer interface {
	welcome(role string) *core.EmailMessage
}

func NewService(
	repo Repository,
	media MediaStore,
	mailer core.EmailService,
	validate *validator.Validate,
	translator ut.Translator,
	cfg core.ListingConfig,
) *Service {
	return &Service{
		repo:        repo,
		media:       media,
		mailer:      mailer,
		validate:    validate,
		translator:  translator,
		pageSize:    cfg.PageSize,
		exportLimit: cfg.ExportLimit,
	}
}

// ListPage is one rendered page of a list.
type ListPage struct {
	Entity    *Entity
	Params    url.Values
	Query     listing.Query
	Rows      []Row
	Count     int
	CanMutate bool
}

func (p ListPage) Page() listing.Page { return p.Query.Page }

func (p ListPage) Pages() []int {
	n := p.Query.Page.Pages(p.Count)
	pages := make([]int, n)
	for i := range pages {
		pages[i] = i + 1
	}
	return pages
}

// PageURL is the query string of page n, keeping every other parameter.
func (p ListPage) PageURL(n int) string {
	params := make(url.Values, len(p.Params)+1)
	for k, v := range p.Params {
		params[k] = v
	}
	params.Set(listing.PageParam, strconv.Itoa(n))
	return "?" + params.Encode()
}

func (p ListPage) HasPrev() bool { return p.Query.Page.HasPrev() }
func (p ListPage) HasNext() bool { return p.Query.Page.HasNext(p.Count) }
func (p ListPage) PrevURL() string { return p.PageURL(p.Query.Page.Number - 1) }
func (p ListPage) NextURL() string { return p.PageURL(p.Query.Page.Number + 1) }

// List fetches one page of an entity's list, filtered and ordered by the query parameters.
func (svc *Service) List(ctx context.Context, ent *Entity, params url.Values) (ListPage, error) {
	q, err := listing.Parse(params, ent.Filters, ent.Sorts, svc.pageSize)
	if err != nil {
		return ListPage{}, err
	}
	rows, count, err := svc.repo.Query(ctx, ent.Kind, q)
	if err != nil {
		return ListPage{}, errors.Wrapf(err, "querying %s", ent.Kind)
	}
	id, _ := user.IdentityFrom(ctx)
	return ListPage{
		Entity:    ent,
		Params:    params,
		Query:     q,
		Rows:      rows,
		Count:     count,
		CanMutate: id.CanMutate(),
	}, nil
}

// Get fetches a single record by its URL key.
func (svc *Service) Get(ctx context.Context, ent *Entity, rawKey string) (Row, error) {
	key, err := ent.ParseKey(rawKey)
	if err != nil {
		return nil, err
	}
	return svc.get(ctx, ent, key)
}

func (svc *Service) get(ctx context.Context, ent *Entity, key interface{}) (Row, error) {
	rows, _, err := svc.repo.Query(ctx, ent.Kind, listing.ByKey(KeyField, key))
	if err != nil {
		return nil, errors.Wrapf(err, "getting %s", ent.Name)
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0], nil
}

// Export fetches every row of a filtered list, up to the export limit.
func (svc *Service) Export(ctx context.Context, ent *Entity, params url.Values) ([]Row, error) {
	if err := authorize(ctx); err != nil {
		return nil, err
	}
	filter, err := ent.Filters.Build(params)
	if err != nil {
		return nil, err
	}
	q := listing.Query{
		Filter:   filter,
		Ordering: ent.Sorts.Parse(params),
		Page:     listing.Page{Number: 1, Size: svc.exportLimit},
	}
	rows, _, err := svc.repo.Query(ctx, ent.Kind, q)
	if err != nil {
		return nil, errors.Wrapf(err, "exporting %s", ent.Kind)
	}
	return rows, nil
}

// Create validates and persists a new record, returning its key.
func (svc *Service) Create(ctx context.Context, ent *Entity, form Form) (string, error) {
	if err := authorize(ctx); err != nil {
		return "", err
	}
	form.SetMode(ModeCreate)
	if err := svc.clean(form); err != nil {
		return "", err
	}

	img, err := svc.saveImage(form)
	if err != nil {
		return "", err
	}
	keys, err := svc.apply(ctx, ent, form, ent.newKey(), img)
	if err != nil {
		svc.removeImage(img)
		return "", err
	}

	if w, ok := form.(welcomer); ok && svc.mailer != nil {
		if msg := w.welcome(ent.Role); msg != nil {
			svc.mailer.SendMessages(msg)
		}
	}
	return fmt.Sprint(keys[0]), nil
}

// Update validates and persists changes to a record.
func (svc *Service) Update(ctx context.Context, ent *Entity, rawKey string, form Form) error {
	if err := authorize(ctx); err != nil {
		return err
	}
	key, err := ent.ParseKey(rawKey)
	if err != nil {
		return err
	}
	form.SetMode(ModeUpdate)
	if err = svc.clean(form); err != nil {
		return err
	}
	old, err := svc.get(ctx, ent, key)
	if err != nil {
		return err
	}

	img, err := svc.saveImage(form)
	if err != nil {
		return err
	}
	if _, err = svc.apply(ctx, ent, form, key, img); err != nil {
		svc.removeImage(img)
		return err
	}
	if img != "" {
		svc.removeImage(imageOf(old))
	}
	return nil
}

// Delete removes a record, and the login account of a person.
func (svc *Service) Delete(ctx context.Context, ent *Entity, rawKey string) error {
	if err := authorize(ctx); err != nil {
		return err
	}
	key, err := ent.ParseKey(rawKey)
	if err != nil {
		return err
	}
	old, err := svc.get(ctx, ent, key)
	if err != nil {
		return err
	}
	if _, err = svc.repo.Apply(ctx, ent.deleteMutations(key)...); err != nil {
		return err
	}
	svc.removeImage(imageOf(old))
	return nil
}

func (svc *Service) clean(form Form) error {
	form.clean()
	if err := svc.validate.Struct(form); err != nil {
		return core.TranslateErrors(err, svc.translator)
	}
	return nil
}

func (svc *Service) apply(ctx context.Context, ent *Entity, form Form, key interface{}, img string) ([]interface{}, error) {
	muts, err := form.mutations(ent.Table, key, img, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	return svc.repo.Apply(ctx, muts...)
}

func (svc *Service) saveImage(form Form) (string, error) {
	fh := form.image()
	if fh == nil || svc.media == nil {
		return "", nil
	}
	name, err := svc.media.Save(fh)
	if errors.Cause(err) == ErrInvalidImage {
		return "", core.NewValidationError(err, core.FieldError{Field: "img", Error: "Invalid image!"})
	}
	return name, errors.Wrap(err, "saving image")
}

func (svc *Service) removeImage(name string) {
	if name != "" && svc.media != nil {
		_ = svc.media.Remove(name)
	}
}

func imageOf(row Row) string {
	if p, ok := row.(interface{ image() string }); ok {
		return p.image()
	}
	return ""
}

// authorize re-checks the role gate of the request identity.
func authorize(ctx context.Context) error {
	if id, ok := user.IdentityFrom(ctx); !ok || !id.CanMutate() {
		return ErrForbidden
	}
	return nil
}
