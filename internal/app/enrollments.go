package app

import (
	"errors"
	"net/http"

	"github.com/lumenlearn/ce-platform/api"
	"github.com/lumenlearn/ce-platform/internal/domain"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// GetEnrollmentStatusHandler returns the effective status of one enrollment
// when courseId is given, or of all the user's enrollments otherwise.
func (app *Application) GetEnrollmentStatusHandler(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	courseId, err := app.readIntQuery(r, "courseId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if courseId != nil {
		enrollment, err := app.enrollments.GetStatus(r.Context(), userId, *courseId)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrRecordNotFound):
				app.notFoundResponse(w, r)
			default:
				app.serverErrorResponse(w, r, err)
			}

			return
		}

		err = app.writeJSON(w, http.StatusOK, toEnrollmentStatus(*enrollment), nil)
		if err != nil {
			app.serverErrorResponse(w, r, err)
		}

		return
	}

	enrollments, err := app.enrollments.GetAllStatuses(r.Context(), userId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.EnrollmentListResponse{
		Enrollments: make([]api.EnrollmentStatusResponse, len(enrollments)),
	}

	for i, enrollment := range enrollments {
		resp.Enrollments[i] = toEnrollmentStatus(enrollment)
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetEnrollmentHistoryHandler(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	params, err := app.readHistoryParams(r)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(params)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	pagination := domain.Pagination{
		Page:     params.Page,
		PageSize: params.PageSize,
	}

	summaries, metadata, err := app.enrollments.History(r.Context(), userId, params.IncludeExpired, pagination)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.EnrollmentHistoryResponse{
		Enrollments: toEnrollmentSummaries(summaries),
		Metadata:    toApiMetadata(metadata),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) CheckAccessHandler(w http.ResponseWriter, r *http.Request) {
	userId := app.contextGetUserId(r)

	courseId, err := app.readIntQuery(r, "courseId")
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if courseId == nil {
		app.badRequestResponse(w, r, errors.New("query parameter \"courseId\" is required"))
		return
	}

	hasAccess, err := app.enrollments.HasAccess(r.Context(), userId, *courseId)
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.AccessCheckResponse{
		CourseId:  *courseId,
		HasAccess: hasAccess,
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) readHistoryParams(r *http.Request) (api.EnrollmentHistoryParams, error) {
	params := api.EnrollmentHistoryParams{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}

	page, err := app.readIntQuery(r, "page")
	if err != nil {
		return params, err
	}
	if page != nil {
		params.Page = *page
	}

	pageSize, err := app.readIntQuery(r, "pageSize")
	if err != nil {
		return params, err
	}
	if pageSize != nil {
		params.PageSize = *pageSize
	}

	if r.URL.Query().Get("includeExpired") != "" {
		includeExpired, err := app.readBoolQuery(r, "includeExpired")
		if err != nil {
			return params, err
		}
		params.IncludeExpired = includeExpired
	}

	return params, nil
}

func toEnrollmentStatus(enrollment domain.Enrollment) api.EnrollmentStatusResponse {
	return api.EnrollmentStatusResponse{
		CourseId:   enrollment.CourseID,
		Status:     string(enrollment.Status),
		Progress:   enrollment.Progress.String(),
		EnrolledAt: enrollment.EnrolledAt,
		ExpiresAt:  enrollment.ExpiresAt,
	}
}

func toEnrollmentSummaries(summaries []domain.EnrollmentSummary) []api.EnrollmentSummary {
	result := make([]api.EnrollmentSummary, len(summaries))

	for i, v := range summaries {
		result[i] = api.EnrollmentSummary{
			Id:          v.EnrollmentID,
			CourseId:    v.CourseID,
			CourseTitle: v.CourseTitle,
			CourseSlug:  v.CourseSlug,
			CeHours:     v.CEHours.String(),
			Status:      string(v.Status),
			Progress:    v.Progress.String(),
			EnrolledAt:  v.EnrolledAt,
			ExpiresAt:   v.ExpiresAt,
		}
	}

	return result
}

func toApiMetadata(metadata *domain.Metadata) api.PaginationMetadata {
	if metadata == nil {
		return api.PaginationMetadata{}
	}

	return api.PaginationMetadata{
		CurrentPage:  metadata.CurrentPage,
		FirstPage:    metadata.FirstPage,
		LastPage:     metadata.LastPage,
		PageSize:     metadata.PageSize,
		TotalRecords: metadata.TotalRecords,
	}
}
