package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/taiglo/internal/client/models"
)

func priceLabel(n int) string {
	if n <= 0 {
		return "-"
	}
	return strings.Repeat("$", n)
}

func printIdentity(w io.Writer, id models.Identity) {
	fmt.Fprintf(w, "%s <%s>\n", id.FullName(), id.Email)
	fmt.Fprintf(w, "  id:          %s\n", id.ID)
	if v := models.Value(id.Phone); v != "" {
		fmt.Fprintf(w, "  phone:       %s\n", v)
	}
	if v := models.Value(id.DateOfBirth); v != "" {
		fmt.Fprintf(w, "  born:        %s\n", v)
	}
	if v := models.Value(id.Bio); v != "" {
		fmt.Fprintf(w, "  bio:         %s\n", v)
	}
	if len(id.Roles) > 0 {
		fmt.Fprintf(w, "  roles:       %s\n", strings.Join(id.Roles, ", "))
	}
	var badges []string
	if id.IsVerified {
		badges = append(badges, "verified")
	}
	if id.IsLocalGuide {
		badges = append(badges, "local guide")
	}
	if len(badges) > 0 {
		fmt.Fprintf(w, "  badges:      %s\n", strings.Join(badges, ", "))
	}
	fmt.Fprintf(w, "  member since %s\n", id.CreatedAt)
}

// printExperienceLine prints the one-line summary used in lists.
func printExperienceLine(w io.Writer, e models.Experience) {
	line := fmt.Sprintf("%s  %-32s %.1f★ (%d)  %s", e.ID, e.Name, e.AverageRating, e.TotalReviews, priceLabel(e.PriceRange))
	if e.IsHiddenGem {
		line += "  hidden gem"
	}
	if e.DistanceKM != nil {
		line += fmt.Sprintf("  %.1f km", *e.DistanceKM)
	}
	fmt.Fprintln(w, line)
}

func printExperiences(w io.Writer, list []models.Experience) {
	if len(list) == 0 {
		fmt.Fprintln(w, "No experiences found")
		return
	}
	for _, e := range list {
		printExperienceLine(w, e)
	}
}

func printExperienceDetails(w io.Writer, d *models.ExperienceDetails) {
	e := d.Experience
	fmt.Fprintln(w, e.Name)
	if e.Category != nil {
		fmt.Fprintf(w, "  category:  %s\n", e.Category.Name)
	}
	fmt.Fprintf(w, "  address:   %s\n", e.Address)
	fmt.Fprintf(w, "  location:  %.4f, %.4f\n", e.Coordinates.Latitude, e.Coordinates.Longitude)
	fmt.Fprintf(w, "  price:     %s\n", priceLabel(e.PriceRange))
	if e.Phone != "" {
		fmt.Fprintf(w, "  phone:     %s\n", e.Phone)
	}
	if e.WebsiteURL != "" {
		fmt.Fprintf(w, "  website:   %s\n", e.WebsiteURL)
	}
	if e.InstagramHandle != "" {
		fmt.Fprintf(w, "  instagram: %s\n", e.InstagramHandle)
	}
	if e.Description != "" {
		fmt.Fprintf(w, "\n%s\n", e.Description)
	}

	st := d.ReviewStats
	fmt.Fprintf(w, "\nRating %.1f from %d reviews\n", st.AverageRating, st.TotalReviews)
	for r := 5; r >= 1; r-- {
		if n, ok := st.RatingDistribution[fmt.Sprint(r)]; ok {
			fmt.Fprintf(w, "  %d★ %s %d\n", r, strings.Repeat("#", n), n)
		}
	}
	for _, rv := range d.Reviews {
		printReview(w, rv)
	}
}

func printReview(w io.Writer, rv models.Review) {
	title := rv.Title
	if title == "" {
		title = "(no title)"
	}
	fmt.Fprintf(w, "\n[%s] %d★ %s\n", rv.ID, rv.Rating, title)
	fmt.Fprintf(w, "  %s\n", strings.ReplaceAll(rv.Content, "\n", "\n  "))
	if rv.VisitDate != "" {
		fmt.Fprintf(w, "  visited %s\n", rv.VisitDate)
	}
	if rv.HelpfulVotes > 0 {
		fmt.Fprintf(w, "  %d found this helpful\n", rv.HelpfulVotes)
	}
}
