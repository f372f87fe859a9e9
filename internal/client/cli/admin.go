package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taiglo/internal/client/client"
	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/client/places"
	"github.com/dmitrijs2005/taiglo/internal/common"
	"github.com/dmitrijs2005/taiglo/internal/filex"
)

const adminListSize = 100

// templateCSV is the bulk-upload spreadsheet layout with one example row.
var templateCSV = strings.Join([]string{
	"name,description,address,latitude,longitude,category_id,phone,website_url,instagram_handle,price_range,is_hidden_gem",
	"Restaurante Exemplo,Melhor restaurante da cidade,Rua das Flores 123,-23.5505,-46.6333,1,(11) 99999-9999,https://exemplo.com,@exemplo,2,true",
}, "\n")

// requireAdmin returns the admin's user id.
func (a *App) requireAdmin() (string, error) {
	id, ok := a.session.Identity()
	if !ok || !id.IsAdmin() {
		fmt.Fprintln(a.out, common.ErrNotAdmin)
		return "", common.ErrNotAdmin
	}
	return id.ID, nil
}

// AdminList shows the experiences under management with their ids.
func (a *App) AdminList(ctx context.Context) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	list, err := a.api.ListExperiences(ctx, client.ExperienceFilter{PerPage: adminListSize})
	if err != nil {
		a.reportError("loading experiences", err)
		return err
	}
	printExperiences(a.out, list.Experiences)
	return nil
}

// AdminCreate prompts for a new experience and creates it on behalf of the
// signed-in admin.
func (a *App) AdminCreate(ctx context.Context) error {
	adminID, err := a.requireAdmin()
	if err != nil {
		return err
	}

	in, err := a.promptExperience(ctx, models.Experience{}, true)
	if err != nil {
		return err
	}
	in.CreatedBy = adminID

	e, err := a.api.CreateExperience(ctx, in)
	if err != nil {
		a.reportError("creating experience", err)
		return err
	}
	fmt.Fprintf(a.out, "Experience %s created\n", e.ID)
	return nil
}

// AdminEdit prompts for changes to an existing experience. Only the fields
// that changed are sent.
func (a *App) AdminEdit(ctx context.Context, id string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	if err := common.ValidateID(id); err != nil {
		fmt.Fprintf(a.out, "%q is not a valid experience id\n", id)
		return err
	}

	d, err := a.api.ExperienceFull(ctx, id)
	if err != nil {
		a.reportError("loading experience", err)
		return err
	}

	fmt.Fprintln(a.out, "Press enter to keep a value")
	in, err := a.promptExperience(ctx, d.Experience, false)
	if err != nil {
		return err
	}
	if in.IsEmpty() {
		fmt.Fprintln(a.out, "Nothing to update")
		return nil
	}

	if _, err := a.api.AdminUpdateExperience(ctx, id, in); err != nil {
		a.reportError("updating experience", err)
		return err
	}
	fmt.Fprintln(a.out, "Experience updated")
	return nil
}

// promptExperience asks for each experience field, showing the values in
// cur. Answers equal to the shown value are dropped, so the result only
// carries changes. When creating, name, description, address and location
// must be given.
func (a *App) promptExperience(ctx context.Context, cur models.Experience, creating bool) (models.ExperienceInput, error) {
	var in models.ExperienceInput

	ask := func(label, current string, required bool) (string, error) {
		prompt := label
		if current != "" {
			prompt = fmt.Sprintf("%s [%s]", label, current)
		}
		v, err := getSimpleText(a.reader, prompt, a.out)
		if err != nil {
			return "", err
		}
		if v == "" && required && creating {
			fmt.Fprintf(a.out, "%s is required\n", label)
			return "", fmt.Errorf("%w: %s", common.ErrRequiredField, strings.ToLower(label))
		}
		if v == current {
			return "", nil
		}
		return v, nil
	}

	var err error
	if in.Name, err = ask("Name", cur.Name, true); err != nil {
		return in, err
	}
	if in.Description, err = ask("Description", cur.Description, true); err != nil {
		return in, err
	}
	if in.Address, err = ask("Address", cur.Address, true); err != nil {
		return in, err
	}

	var location string
	if !creating {
		location = fmt.Sprintf("%g,%g", cur.Coordinates.Latitude, cur.Coordinates.Longitude)
	}
	v, err := ask("Location (lat,lng or neighborhood)", location, true)
	if err != nil {
		return in, err
	}
	if v != "" {
		loc, err := places.Parse(v)
		if err != nil {
			fmt.Fprintf(a.out, "%v (known places: %s)\n", err, strings.Join(places.Names(), ", "))
			return in, err
		}
		in.Latitude, in.Longitude = &loc.Latitude, &loc.Longitude
	}

	category := cur.CategoryID
	if cur.Category != nil {
		category = cur.Category.Name
	}
	if v, err = ask("Category (name or id)", category, false); err != nil {
		return in, err
	}
	if in.CategoryID, err = a.categoryID(ctx, v); err != nil {
		return in, err
	}
	if in.CategoryID == cur.CategoryID {
		in.CategoryID = ""
	}

	if in.Phone, err = ask("Phone", cur.Phone, false); err != nil {
		return in, err
	}
	if in.WebsiteURL, err = ask("Website", cur.WebsiteURL, false); err != nil {
		return in, err
	}
	if in.InstagramHandle, err = ask("Instagram", cur.InstagramHandle, false); err != nil {
		return in, err
	}

	var price string
	if cur.PriceRange > 0 {
		price = strconv.Itoa(cur.PriceRange)
	}
	if v, err = ask("Price range (1-4)", price, false); err != nil {
		return in, err
	}
	if v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 4 {
			fmt.Fprintln(a.out, common.ErrInvalidPrice)
			return in, common.ErrInvalidPrice
		}
		in.PriceRange = n
	}

	gem := ""
	if !creating {
		gem = yesNo(cur.IsHiddenGem)
	}
	if v, err = ask("Hidden gem (yes/no)", gem, false); err != nil {
		return in, err
	}
	switch strings.ToLower(v) {
	case "":
	case "y", "yes":
		in.IsHiddenGem = models.Ptr(true)
	case "n", "no":
		in.IsHiddenGem = models.Ptr(false)
	default:
		fmt.Fprintln(a.out, "Answer yes or no")
		return in, fmt.Errorf("invalid answer %q", v)
	}
	if in.IsHiddenGem != nil && !creating && *in.IsHiddenGem == cur.IsHiddenGem {
		in.IsHiddenGem = nil
	}

	return in, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// AdminDelete removes an experience after the admin confirms.
func (a *App) AdminDelete(ctx context.Context, id string) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}
	if err := common.ValidateID(id); err != nil {
		fmt.Fprintf(a.out, "%q is not a valid experience id\n", id)
		return err
	}

	answer, err := getSimpleText(a.reader, fmt.Sprintf("Delete experience %s? Type 'yes' to confirm", id), a.out)
	if err != nil {
		return err
	}
	if !strings.EqualFold(answer, "yes") {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}

	if err := a.api.AdminDeleteExperience(ctx, id); err != nil {
		a.reportError("deleting experience", err)
		return err
	}
	fmt.Fprintln(a.out, "Experience deleted")
	return nil
}

// AdminUpload sends a CSV or Excel file of experiences for bulk creation.
func (a *App) AdminUpload(ctx context.Context, path string) error {
	userID, err := a.requireAdmin()
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(a.out, "Cannot open %s: %v\n", path, err)
		return err
	}
	defer f.Close()

	res, err := a.api.BulkUpload(ctx, filepath.Base(path), f, userID)
	if err != nil {
		a.reportError("uploading experiences", err)
		return err
	}

	fmt.Fprintf(a.out, "Created %d experiences\n", res.CreatedCount)
	for _, e := range res.Errors {
		fmt.Fprintf(a.out, "  %s\n", e)
	}
	return nil
}

// AdminTemplate checks access to the upload template and writes the CSV
// layout to the template path.
func (a *App) AdminTemplate(ctx context.Context) error {
	if _, err := a.requireAdmin(); err != nil {
		return err
	}

	raw, err := a.api.UploadTemplate(ctx)
	if err != nil {
		a.reportError("downloading template", err)
		return err
	}
	a.logger.Debug(ctx, "upload template", "bytes", len(raw))

	if _, err := filex.EnsureParentDir(a.templatePath); err != nil {
		a.reportError("writing template", err)
		return err
	}
	if err := os.WriteFile(a.templatePath, []byte(templateCSV), 0o644); err != nil {
		a.reportError("writing template", err)
		return err
	}
	fmt.Fprintf(a.out, "Template written to %s\n", a.templatePath)
	return nil
}
