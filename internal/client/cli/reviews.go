package cli

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/taiglo/internal/client/client"
	"github.com/dmitrijs2005/taiglo/internal/client/models"
	"github.com/dmitrijs2005/taiglo/internal/common"
)

// Review prompts for a rating and text and posts a review of the given
// experience as the signed-in user.
func (a *App) Review(ctx context.Context, experienceID string) error {
	if err := common.ValidateID(experienceID); err != nil {
		fmt.Fprintf(a.out, "%q is not a valid experience id\n", experienceID)
		return err
	}
	id, ok := a.session.Identity()
	if !ok {
		return fmt.Errorf("not signed in")
	}

	ratingText, err := getSimpleText(a.reader, "Rating (1-5)", a.out)
	if err != nil {
		return err
	}
	rating, err := strconv.Atoi(ratingText)
	if err != nil || rating < 1 || rating > 5 {
		fmt.Fprintln(a.out, "Rating must be a whole number from 1 to 5")
		return fmt.Errorf("invalid rating %q", ratingText)
	}

	title, err := getSimpleText(a.reader, "Title (optional)", a.out)
	if err != nil {
		return err
	}
	content, err := getMultiline(a.reader, "Tell others about your visit", a.out)
	if err != nil {
		return err
	}
	if content == "" {
		fmt.Fprintln(a.out, "A review needs some text")
		return fmt.Errorf("empty review")
	}

	visit, err := getSimpleText(a.reader, "Visit date YYYY-MM-DD (optional)", a.out)
	if err != nil {
		return err
	}
	var visitDate *string
	if visit != "" {
		if _, err := time.Parse(time.DateOnly, visit); err != nil {
			fmt.Fprintln(a.out, "Visit date must look like 2025-03-01")
			return err
		}
		visitDate = &visit
	}

	rv, err := a.api.CreateReview(ctx, models.NewReview{
		ExperienceID: experienceID,
		UserID:       id.ID,
		Rating:       rating,
		Title:        title,
		Content:      content,
		VisitDate:    visitDate,
	})
	if err != nil {
		a.reportError("posting review", err)
		return err
	}
	fmt.Fprintf(a.out, "Review %s posted\n", rv.ID)
	return nil
}

// MyReviews lists the signed-in user's reviews, newest first.
func (a *App) MyReviews(ctx context.Context) error {
	id, ok := a.session.Identity()
	if !ok {
		return fmt.Errorf("not signed in")
	}

	list, err := a.api.ListReviews(ctx, client.ReviewFilter{UserID: id.ID, SortBy: "created_at", SortOrder: "desc"})
	if err != nil {
		a.reportError("loading reviews", err)
		return err
	}
	if len(list.Reviews) == 0 {
		fmt.Fprintln(a.out, "You have not written any reviews yet")
		return nil
	}
	for _, rv := range list.Reviews {
		printReview(a.out, rv)
	}
	return nil
}

// Helpful marks a review as helpful.
func (a *App) Helpful(ctx context.Context, reviewID string) error {
	if err := common.ValidateID(reviewID); err != nil {
		fmt.Fprintf(a.out, "%q is not a valid review id\n", reviewID)
		return err
	}
	if err := a.api.MarkReviewHelpful(ctx, reviewID, true); err != nil {
		a.reportError("voting", err)
		return err
	}
	fmt.Fprintln(a.out, "Thanks for your vote")
	return nil
}
