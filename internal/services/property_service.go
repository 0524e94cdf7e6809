package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/joshua-takyi/realtorhub/internal/cache"
	"github.com/joshua-takyi/realtorhub/internal/helpers"
	"github.com/joshua-takyi/realtorhub/internal/httperr"
	"github.com/joshua-takyi/realtorhub/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	propertyListPrefix = "properties"
	locationsKey       = "locations:all"
	locationsPrefix    = "locations"
)

type PropertyService struct {
	repo   models.PropertyRepo
	cache  *cache.Cache
	images ImageUploader
	logger *slog.Logger
	now    func() time.Time
}

func NewPropertyService(repo models.PropertyRepo, c *cache.Cache, images ImageUploader, logger *slog.Logger) *PropertyService {
	return &PropertyService{
		repo:   repo,
		cache:  c,
		images: images,
		logger: logger,
		now:    time.Now,
	}
}

type PropertyInput struct {
	Title        string
	Description  string
	Price        float64
	Location     string
	Bedrooms     int
	Bathrooms    int
	PropertyType string
	SquareFeet   int
	Furnished    bool
	HasParking   bool
	Features     []string
	Images       []string
	RealtorID    string
}

func (ps *PropertyService) CreateProperty(ctx context.Context, caller *helpers.Claims, in PropertyInput) (*models.Property, error) {
	realtorID := strings.TrimSpace(in.RealtorID)
	if realtorID == "" && caller != nil {
		realtorID = caller.UserID
	}
	rid, err := models.ParseID("realtor", realtorID)
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.IsRealtor() || !caller.IsOwner(rid.Hex()) {
		return nil, httperr.New(httperr.Forbidden, "only realtors can list their own properties")
	}

	now := ps.now().UTC()
	p := &models.Property{
		Title:        strings.TrimSpace(in.Title),
		Description:  strings.TrimSpace(in.Description),
		Price:        in.Price,
		Location:     strings.TrimSpace(in.Location),
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		PropertyType: models.PropertyType(strings.ToUpper(strings.TrimSpace(in.PropertyType))),
		SquareFeet:   in.SquareFeet,
		Furnished:    in.Furnished,
		HasParking:   in.HasParking,
		Features:     cleanList(in.Features),
		Realtor:      rid,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := models.Validate.Struct(p); err != nil {
		return nil, validationError(err)
	}

	if p.Images, err = ps.upload(ctx, in.Images); err != nil {
		return nil, err
	}

	created, err := ps.repo.CreateProperty(ctx, p)
	if err != nil {
		return nil, err
	}
	ps.invalidate(ctx)
	return created, nil
}

func (ps *PropertyService) upload(ctx context.Context, images []string) ([]string, error) {
	images = cleanList(images)
	if ps.images == nil || len(images) == 0 {
		return images, nil
	}
	urls, err := ps.images.UploadImages(ctx, images, helpers.PropertyFolder)
	if err != nil {
		return nil, httperr.Wrap(httperr.Upstream, err, "failed to upload property images")
	}
	return urls, nil
}

// ownedProperty loads a property and checks the caller listed it.
func (ps *PropertyService) ownedProperty(ctx context.Context, caller *helpers.Claims, id string) (*models.Property, error) {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	p, err := ps.repo.GetPropertyByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if caller == nil || !caller.IsOwner(p.Realtor.Hex()) {
		return nil, httperr.New(httperr.Forbidden, "only the listing realtor can change this property")
	}
	return p, nil
}

func (ps *PropertyService) UpdateProperty(ctx context.Context, caller *helpers.Claims, id string, update models.PropertyUpdate) (*models.Property, error) {
	p, err := ps.ownedProperty(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if p.Archived {
		return nil, httperr.Invalid("archived properties cannot be edited")
	}

	if update.PropertyType != nil {
		t := models.PropertyType(strings.ToUpper(strings.TrimSpace(string(*update.PropertyType))))
		update.PropertyType = &t
	}
	if update.Features != nil {
		f := cleanList(*update.Features)
		update.Features = &f
	}
	if update.Images != nil {
		urls, err := ps.upload(ctx, *update.Images)
		if err != nil {
			return nil, err
		}
		update.Images = &urls
	}
	update.Apply(p)
	if err := models.Validate.Struct(p); err != nil {
		return nil, validationError(err)
	}

	updated, err := ps.repo.ReplaceProperty(ctx, p)
	if err != nil {
		return nil, err
	}
	ps.invalidate(ctx)
	return updated, nil
}

// ArchiveProperty hides a listing from search. The record is kept.
func (ps *PropertyService) ArchiveProperty(ctx context.Context, caller *helpers.Claims, id string) error {
	p, err := ps.ownedProperty(ctx, caller, id)
	if err != nil {
		return err
	}
	if err := ps.repo.ArchiveProperty(ctx, p.ID); err != nil {
		return err
	}
	ps.invalidate(ctx)
	return nil
}

func (ps *PropertyService) GetProperty(ctx context.Context, id string) (*models.Property, error) {
	oid, err := models.ParseID("id", id)
	if err != nil {
		return nil, err
	}
	return ps.repo.GetPropertyByID(ctx, oid)
}

func (ps *PropertyService) PropertiesByID(ctx context.Context, ids []string) (map[string]*models.Property, error) {
	oids := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := models.ParseID("id", id); err == nil {
			oids = append(oids, oid)
		}
	}
	props, err := ps.repo.GetPropertiesByIDs(ctx, uniqueIDs(oids))
	if err != nil {
		return nil, err
	}
	out := make(map[string]*models.Property, len(props))
	for _, p := range props {
		out[p.ID.Hex()] = p
	}
	return out, nil
}

type PropertySearch struct {
	PropertyType *string
	MinPrice     *float64
	MaxPrice     *float64
	Bedrooms     *int
	Bathrooms    *int
	Location     *string
	DateListed   *string
	Sort         *string
	RealtorID    *string
}

func (s PropertySearch) filter() (models.PropertyFilter, error) {
	f := models.PropertyFilter{
		MinPrice:  s.MinPrice,
		MaxPrice:  s.MaxPrice,
		Bedrooms:  s.Bedrooms,
		Bathrooms: s.Bathrooms,
		Location:  s.Location,
	}
	if s.PropertyType != nil && *s.PropertyType != "" {
		t := models.PropertyType(strings.ToUpper(*s.PropertyType))
		f.PropertyType = &t
	}
	if s.DateListed != nil && *s.DateListed != "" {
		d, err := models.ParseDay(*s.DateListed)
		if err != nil {
			return f, err
		}
		f.DateListed = &d
	}
	if s.Sort != nil {
		f.Sort = models.PropertySort(*s.Sort)
	}
	if s.RealtorID != nil && *s.RealtorID != "" {
		rid, err := models.ParseID("realtor", *s.RealtorID)
		if err != nil {
			return f, err
		}
		f.Realtor = &rid
	}
	if f.MinPrice != nil && f.MaxPrice != nil && *f.MinPrice > *f.MaxPrice {
		return f, httperr.Invalid("minPrice must not exceed maxPrice")
	}
	return f, nil
}

func (s PropertySearch) cacheKey() string {
	params := map[string]string{}
	put := func(k string, v *string) {
		if v != nil {
			params[k] = *v
		}
	}
	put("propertyType", s.PropertyType)
	put("location", s.Location)
	put("dateListed", s.DateListed)
	put("sort", s.Sort)
	put("realtor", s.RealtorID)
	if s.MinPrice != nil {
		params["minPrice"] = strconv.FormatFloat(*s.MinPrice, 'f', -1, 64)
	}
	if s.MaxPrice != nil {
		params["maxPrice"] = strconv.FormatFloat(*s.MaxPrice, 'f', -1, 64)
	}
	if s.Bedrooms != nil {
		params["bedrooms"] = strconv.Itoa(*s.Bedrooms)
	}
	if s.Bathrooms != nil {
		params["bathrooms"] = strconv.Itoa(*s.Bathrooms)
	}
	return cache.Key(propertyListPrefix, params)
}

// SearchProperties lists non-archived properties matching s, served from cache when possible.
func (ps *PropertyService) SearchProperties(ctx context.Context, s PropertySearch) ([]*models.Property, error) {
	f, err := s.filter()
	if err != nil {
		return nil, err
	}

	key := s.cacheKey()
	var cached []*models.Property
	if hit, err := ps.cache.Get(ctx, key, &cached); err != nil {
		ps.logger.Warn("property cache read failed", "key", key, "error", err)
	} else if hit {
		return cached, nil
	}

	props, err := ps.repo.ListProperties(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := ps.cache.Set(ctx, key, props); err != nil {
		ps.logger.Warn("property cache write failed", "key", key, "error", err)
	}
	return props, nil
}

func (ps *PropertyService) RealtorProperties(ctx context.Context, realtorID string) ([]*models.Property, error) {
	rid, err := models.ParseID("realtorId", realtorID)
	if err != nil {
		return nil, err
	}
	return ps.repo.ListProperties(ctx, models.PropertyFilter{Realtor: &rid})
}

func (ps *PropertyService) UniqueLocations(ctx context.Context) ([]string, error) {
	var cached []string
	if hit, err := ps.cache.Get(ctx, locationsKey, &cached); err != nil {
		ps.logger.Warn("location cache read failed", "error", err)
	} else if hit {
		return cached, nil
	}

	locations, err := ps.repo.UniqueLocations(ctx)
	if err != nil {
		return nil, err
	}
	if err := ps.cache.Set(ctx, locationsKey, locations); err != nil {
		ps.logger.Warn("location cache write failed", "error", err)
	}
	return locations, nil
}

func (ps *PropertyService) invalidate(ctx context.Context) {
	for _, prefix := range []string{propertyListPrefix, locationsPrefix} {
		if err := ps.cache.Invalidate(ctx, prefix); err != nil {
			ps.logger.Warn("cache invalidation failed", "prefix", prefix, "error", err)
		}
	}
}

func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
