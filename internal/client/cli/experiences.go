package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taiglo/internal/client/client"
	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/client/places"
	"github.com/dmitrijs2005/taiglo/internal/common"
	"golang.org/x/sync/errgroup"
)

const (
	dashboardPageSize = 20
	nearbyLimit       = 50
	defaultRadiusKM   = 5
	defaultListSort   = "rating"
)

// listSorts maps the sort names accepted by list to the backend's sort_by
// and sort_order.
var listSorts = map[string]struct{ by, order string }{
	"rating": {"rating", "desc"},
	"newest": {"created_at", "desc"},
	"name":   {"name", "asc"},
}

// listOptions holds the category= and sort= tokens of a list or nearby
// command. Any other word is kept in words.
type listOptions struct {
	category string
	sort     string
	words    []string
}

func parseListOptions(args []string) listOptions {
	var o listOptions
	for _, arg := range args {
		if v, ok := strings.CutPrefix(arg, "category="); ok {
			o.category = v
			continue
		}
		if v, ok := strings.CutPrefix(arg, "sort="); ok {
			o.sort = v
			continue
		}
		o.words = append(o.words, arg)
	}
	return o
}

// resolveCategory finds a category by id, by exact name or by a unique
// part of its name. Matching ignores case.
func resolveCategory(cats []models.Category, query string) (models.Category, error) {
	var partial []models.Category
	needle := strings.ToLower(query)
	for _, c := range cats {
		if c.ID == query || strings.EqualFold(c.Name, query) {
			return c, nil
		}
		if strings.Contains(strings.ToLower(c.Name), needle) {
			partial = append(partial, c)
		}
	}
	if len(partial) == 1 {
		return partial[0], nil
	}
	return models.Category{}, fmt.Errorf("%w %q", common.ErrUnknownCategory, query)
}

// categoryID resolves query against the backend's categories. An empty
// query means no filter.
func (a *App) categoryID(ctx context.Context, query string) (string, error) {
	if query == "" {
		return "", nil
	}
	cats, err := a.api.ListCategories(ctx)
	if err != nil {
		a.reportError("loading categories", err)
		return "", err
	}
	c, err := resolveCategory(cats, query)
	if err != nil {
		names := make([]string, len(cats))
		for i, c := range cats {
			names[i] = c.Name
		}
		fmt.Fprintf(a.out, "%v (categories: %s)\n", err, strings.Join(names, ", "))
		return "", err
	}
	return c.ID, nil
}

// List shows the dashboard: the categories and up to a page of
// experiences. args may hold category=<name|id>, sort=rating|newest|name
// and a search term. Without a category the two lists are fetched
// concurrently.
func (a *App) List(ctx context.Context, args []string) error {
	opts := parseListOptions(args)
	if opts.sort == "" {
		opts.sort = defaultListSort
	}
	sort, ok := listSorts[opts.sort]
	if !ok {
		fmt.Fprintf(a.out, "Unknown sort %q, use rating, newest or name\n", opts.sort)
		return common.ErrInvalidSort
	}

	filter := client.ExperienceFilter{
		Page:      1,
		PerPage:   dashboardPageSize,
		SortBy:    sort.by,
		SortOrder: sort.order,
		Search:    strings.Join(opts.words, " "),
	}

	var (
		cats []models.Category
		list *models.ExperienceList
	)

	if opts.category != "" {
		var err error
		if filter.CategoryID, err = a.categoryID(ctx, opts.category); err != nil {
			return err
		}
		if list, err = a.api.ListExperiences(ctx, filter); err != nil {
			a.reportError("loading experiences", err)
			return err
		}
		printExperiences(a.out, list.Experiences)
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cats, err = a.api.ListCategories(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		list, err = a.api.ListExperiences(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		a.reportError("loading experiences", err)
		return err
	}

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	if len(names) > 0 {
		fmt.Fprintf(a.out, "Categories: %s\n", strings.Join(names, ", "))
	}
	printExperiences(a.out, list.Experiences)
	return nil
}

func (a *App) Categories(ctx context.Context) error {
	cats, err := a.api.ListCategories(ctx)
	if err != nil {
		a.reportError("loading categories", err)
		return err
	}
	if len(cats) == 0 {
		fmt.Fprintln(a.out, "No categories")
		return nil
	}
	for _, c := range cats {
		fmt.Fprintf(a.out, "%s  %-20s %d experiences\n", c.ID, c.Name, c.ExperienceCount)
	}
	return nil
}

// Nearby lists experiences around a place. args is the place (a known
// neighborhood or "lat,lng") optionally followed by a radius in km, and may
// carry a category=<name|id> filter anywhere.
func (a *App) Nearby(ctx context.Context, args []string) error {
	opts := parseListOptions(args)
	if opts.sort != "" {
		fmt.Fprintln(a.out, "nearby results are ordered by distance")
		return common.ErrInvalidSort
	}
	args = opts.words

	radius := float64(defaultRadiusKM)
	if n := len(args); n > 1 {
		if r, err := strconv.ParseFloat(args[n-1], 64); err == nil && r > 0 {
			radius = r
			args = args[:n-1]
		}
	}

	loc, err := places.Parse(strings.Join(args, " "))
	if err != nil {
		fmt.Fprintf(a.out, "%v (known places: %s)\n", err, strings.Join(places.Names(), ", "))
		return err
	}

	categoryID, err := a.categoryID(ctx, opts.category)
	if err != nil {
		return err
	}

	list, err := a.api.NearbyExperiences(ctx, client.NearbyQuery{
		Location:   loc,
		RadiusKM:   radius,
		Limit:      nearbyLimit,
		CategoryID: categoryID,
	})
	if err != nil {
		a.reportError("searching nearby", err)
		return err
	}

	fmt.Fprintf(a.out, "Within %gkm of %.4f, %.4f:\n", radius, loc.Latitude, loc.Longitude)
	printExperiences(a.out, list.Experiences)
	return nil
}

// Show prints an experience with its reviews.
func (a *App) Show(ctx context.Context, id string) error {
	if err := common.ValidateID(id); err != nil {
		fmt.Fprintf(a.out, "%q is not a valid experience id\n", id)
		return err
	}

	d, err := a.api.ExperienceFull(ctx, id)
	if err != nil {
		a.reportError("loading experience", err)
		return err
	}
	printExperienceDetails(a.out, d)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	res, err := a.api.Search(ctx, query)
	if err != nil {
		a.reportError("searching", err)
		return err
	}
	fmt.Fprintf(a.out, "%d results for %q\n", res.TotalFound, query)
	printExperiences(a.out, res.Experiences)
	return nil
}
