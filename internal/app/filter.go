package app

import (
	"strings"

	"timebank/internal/catalog"
	"timebank/internal/models"
)

// BrowseFilter narrows the marketplace listing. Empty fields match
// everything; Mode "both" is treated the same as empty.
type BrowseFilter struct {
	Query    string // case-insensitive substring over task label and description
	City     string // case-insensitive substring over the poster's city
	Mode     string // "online" or "offline"; a posting offering both satisfies either
	Category string // catalog category of the task label
}

// FilterTasks returns the postings visible to viewerID under the filter.
// The viewer's own postings are always excluded, filter or not, and the
// input order is preserved.
func FilterTasks(tasks []models.Task, viewerID int64, filter BrowseFilter) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.UserID == viewerID {
			continue
		}
		if !matchesQuery(task, filter.Query) {
			continue
		}
		if !matchesCity(task, filter.City) {
			continue
		}
		if !matchesMode(task, filter.Mode) {
			continue
		}
		if !matchesCategory(task, filter.Category) {
			continue
		}
		out = append(out, task)
	}
	return out
}

func matchesQuery(task models.Task, query string) bool {
	if query == "" {
		return true
	}
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(task.TaskType), query) ||
		strings.Contains(strings.ToLower(task.Description), query)
}

func matchesCity(task models.Task, city string) bool {
	if city == "" {
		return true
	}
	return strings.Contains(strings.ToLower(task.UserCity), strings.ToLower(city))
}

func matchesMode(task models.Task, mode string) bool {
	if mode == "" || mode == string(models.ModeBoth) {
		return true
	}
	// A posting with mode "both" satisfies both an online and an offline
	// filter.
	return string(task.Mode) == mode || task.Mode == models.ModeBoth
}

func matchesCategory(task models.Task, category string) bool {
	if category == "" {
		return true
	}
	taskType, ok := catalog.TaskTypeByName(task.TaskType)
	if !ok {
		return false
	}
	return taskType.Category == category
}
