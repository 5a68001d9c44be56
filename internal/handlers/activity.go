package handlers

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"agora/internal/db"
	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/services"
	"agora/internal/utils"
	"agora/internal/validation"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	activitiesPerPage = 3

	// Every cached list page lives under this prefix so a single purge
	// drops all of them when the underlying data changes.
	listCachePrefix = "activity:index:page:"
)

type ActivityHandler struct {
	aqiService *services.AQIService
}

func NewActivityHandler() *ActivityHandler {
	return &ActivityHandler{
		aqiService: services.GetAQIService(),
	}
}

// normalizeFilter maps the filtre query parameter to one of the three
// supported values. The identity filters need a logged-in account;
// anonymous visitors silently fall back to the unfiltered list.
func normalizeFilter(filtre string, authenticated bool) string {
	switch filtre {
	case "mes_proposees", "mes_inscriptions":
		if authenticated {
			return filtre
		}
		return "toutes"
	default:
		return "toutes"
	}
}

// parsePage reads the page parameter and clamps it to [1, totalPages]:
// non-numeric values land on the first page, numeric values outside the
// range (zero and negatives included) land on the last page, never on a
// 404.
func parsePage(raw string, totalPages int) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 1
	}
	if n < 1 || n > totalPages {
		return totalPages
	}
	return n
}

func totalPageCount(total int64, perPage int) int {
	pages := int(math.Ceil(float64(total) / float64(perPage)))
	if pages == 0 {
		pages = 1
	}
	return pages
}

// fillAttendeeCounts batch-loads the attendee count for a page of activities.
func fillAttendeeCounts(activities []models.Activity) {
	if len(activities) == 0 {
		return
	}

	ids := make([]uint, len(activities))
	for i, a := range activities {
		ids[i] = a.ID
	}

	type countResult struct {
		ActivityID uint
		Count      int
	}
	var results []countResult
	db.DB.Table("activity_attendees").
		Select("activity_id, COUNT(*) as count").
		Where("activity_id IN ?", ids).
		Group("activity_id").
		Scan(&results)

	countMap := make(map[uint]int)
	for _, r := range results {
		countMap[r.ActivityID] = r.Count
	}

	for i := range activities {
		activities[i].AttendeeCount = countMap[activities[i].ID]
	}
}

// activityQuery builds the filtered list query. filtre must already be
// normalized; userID is only consulted by the identity filters. Callers
// get a fresh statement on every call: gorm statements are not safely
// reusable across Count and Find.
func activityQuery(filtre string, userID, categoryID uint) *gorm.DB {
	query := db.DB.Model(&models.Activity{})
	switch filtre {
	case "mes_proposees":
		query = query.Where("proposer_id = ?", userID)
	case "mes_inscriptions":
		query = query.Joins("JOIN activity_attendees ON activity_attendees.activity_id = activities.id").
			Where("activity_attendees.user_id = ?", userID)
	}
	if categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	return query
}

// cachedListPage returns a per-request copy of a cached list payload.
// The cached map is shared by every request that hits the same key, and
// Render mutates its argument, so the copy is mandatory.
func cachedListPage(key string) (gin.H, bool) {
	if cached := utils.GetCache().Get(key); cached != nil {
		if data, ok := cached.(gin.H); ok {
			return cloneH(data), true
		}
	}
	return nil, false
}

// Index lists activities, filtered by identity (toutes / mes_proposees /
// mes_inscriptions) and by category, 3 per page, ordered by start time.
func (h *ActivityHandler) Index(c *gin.Context) {
	user := middleware.CurrentUser(c)
	filtre := normalizeFilter(c.Query("filtre"), user != nil)
	categoryID := utils.StringToUint(c.Query("category"))

	// The anonymous unfiltered first pages are the hot path, cache them
	cacheKey := ""
	if user == nil && categoryID == 0 {
		cacheKey = listCachePrefix + c.Query("page")
		if data, ok := cachedListPage(cacheKey); ok {
			Render(c, http.StatusOK, "activity/index.html", data)
			return
		}
	}

	var userID uint
	if user != nil {
		userID = user.ID
	}

	var total int64
	activityQuery(filtre, userID, categoryID).Count(&total)

	totalPages := totalPageCount(total, activitiesPerPage)
	page := parsePage(c.Query("page"), totalPages)
	offset := (page - 1) * activitiesPerPage

	var activities []models.Activity
	activityQuery(filtre, userID, categoryID).Preload("Proposer").Preload("Category").
		Order("start_time ASC").
		Limit(activitiesPerPage).
		Offset(offset).
		Find(&activities)

	fillAttendeeCounts(activities)

	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)

	var categorySelected *models.Category
	if categoryID != 0 {
		var cat models.Category
		if err := db.DB.First(&cat, categoryID).Error; err == nil {
			categorySelected = &cat
		}
	}

	renderData := gin.H{
		"Title":            "Activités",
		"Activities":       activities,
		"Filtre":           filtre,
		"Categories":       categories,
		"CategorySelected": categorySelected,
		"CurrentPage":      page,
		"TotalPages":       totalPages,
	}

	if cacheKey != "" {
		// Store a copy: Render is about to write request-scoped keys
		// into renderData.
		utils.GetCache().Set(cacheKey, cloneH(renderData), 1*time.Minute)
	}

	Render(c, http.StatusOK, "activity/index.html", renderData)
}

// ShowCreate displays the new-activity form. The attendee multi-select
// excludes the proposer: you are hosting, not enrolling.
func (h *ActivityHandler) ShowCreate(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	var categories []models.Category
	db.DB.Order("name ASC").Find(&categories)

	var selectableUsers []models.User
	db.DB.Where("id != ? AND is_active = ? AND is_superuser = ?", user.ID, true, false).
		Order("username ASC").
		Find(&selectableUsers)

	Render(c, http.StatusOK, "activity/new.html", gin.H{
		"Title":           "Proposer une activité",
		"FieldErrors":     map[string]string{},
		"Categories":      categories,
		"SelectableUsers": selectableUsers,
	})
}

// parseLocalTime reads the datetime-local input format, falling back to
// RFC 3339 so API-style clients work too.
func parseLocalTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04", raw, time.Local); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	return time.Time{}
}

// Create validates and persists a new activity; the current identity
// becomes the proposer.
func (h *ActivityHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	activity := models.Activity{
		Title:        c.PostForm("title"),
		Description:  c.PostForm("description"),
		LocationCity: c.PostForm("location_city"),
		StartTime:    parseLocalTime(c.PostForm("start_time")),
		EndTime:      parseLocalTime(c.PostForm("end_time")),
		ProposerID:   user.ID,
	}

	if categoryID := utils.StringToUint(c.PostForm("category")); categoryID != 0 {
		var category models.Category
		if err := db.DB.First(&category, categoryID).Error; err == nil {
			activity.CategoryID = &category.ID
		}
	}

	// Optional preselected attendees, proposer filtered out
	for _, raw := range c.PostFormArray("attendees") {
		attendeeID := utils.StringToUint(raw)
		if attendeeID == 0 || attendeeID == user.ID {
			continue
		}
		var attendee models.User
		if err := db.DB.First(&attendee, attendeeID).Error; err == nil {
			activity.Attendees = append(activity.Attendees, attendee)
		}
	}

	result := validation.ValidateActivity(&activity, time.Now())
	if !result.OK() {
		var categories []models.Category
		db.DB.Order("name ASC").Find(&categories)
		var selectableUsers []models.User
		db.DB.Where("id != ? AND is_active = ? AND is_superuser = ?", user.ID, true, false).
			Order("username ASC").
			Find(&selectableUsers)

		Render(c, http.StatusBadRequest, "activity/new.html", gin.H{
			"Title":           "Proposer une activité",
			"FieldErrors":     result.Errors,
			"Activity":        activity,
			"Categories":      categories,
			"SelectableUsers": selectableUsers,
		})
		return
	}

	if err := db.DB.Create(&activity).Error; err != nil {
		RenderError(c, http.StatusInternalServerError, "La création de l'activité a échoué.")
		return
	}

	utils.GetCache().DeletePrefix(listCachePrefix)

	c.Redirect(http.StatusFound, "/")
}

// Detail renders an activity page with its attendee list and, when the
// lookup succeeds, the air-quality index of the host city.
func (h *ActivityHandler) Detail(c *gin.Context) {
	activityID := utils.StringToUint(c.Param("id"))

	var activity models.Activity
	if err := db.DB.Preload("Proposer").Preload("Category").Preload("Attendees").
		First(&activity, activityID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Cette activité n'existe pas.")
		return
	}

	user := middleware.CurrentUser(c)
	enrolled := false
	if user != nil {
		enrolled = activity.HasAttendee(user.ID)
	}

	aqi, hasAQI := h.aqiService.Lookup(activity.LocationCity)

	Render(c, http.StatusOK, "activity/detail.html", gin.H{
		"Title":       activity.Title,
		"Activity":    activity,
		"Description": utils.RenderUserText(activity.Description),
		"Enrolled":    enrolled,
		"AQI":         aqi,
		"HasAQI":      hasAQI,
	})
}

// Toggle handles the inscrire/desinscrire buttons on the detail page.
// Both actions are idempotent on the attendee set, and the proposer may
// not enroll in their own activity.
func (h *ActivityHandler) Toggle(c *gin.Context) {
	activityID := utils.StringToUint(c.Param("id"))
	target := fmt.Sprintf("/activity/%d/", activityID)

	var activity models.Activity
	if err := db.DB.First(&activity, activityID).Error; err != nil {
		RenderError(c, http.StatusNotFound, "Cette activité n'existe pas.")
		return
	}

	user := middleware.CurrentUser(c)
	if user == nil {
		c.Redirect(http.StatusFound, "/login")
		return
	}

	_, enroll := c.GetPostForm("inscrire")
	_, withdraw := c.GetPostForm("desinscrire")

	if activity.ProposerID == user.ID && (enroll || withdraw) {
		// Proposers host, they do not enroll
		c.Redirect(http.StatusFound, target)
		return
	}

	if enroll {
		if err := db.DB.Model(&activity).Association("Attendees").Append(user); err != nil {
			RenderError(c, http.StatusInternalServerError, "L'inscription a échoué.")
			return
		}
	} else if withdraw {
		if err := db.DB.Model(&activity).Association("Attendees").Delete(user); err != nil {
			RenderError(c, http.StatusInternalServerError, "La désinscription a échoué.")
			return
		}
	}

	if enroll || withdraw {
		// Attendee counts on the cached list pages just changed
		utils.GetCache().DeletePrefix(listCachePrefix)
	}

	c.Redirect(http.StatusFound, target)
}
