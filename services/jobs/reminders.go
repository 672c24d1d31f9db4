package jobs

import (
	"log"
	"time"

	"project_flow_app_go/config"
	"project_flow_app_go/models"
	"project_flow_app_go/services"

	"gorm.io/gorm"
)

// SendOverdueTaskReminders emails each assignee a digest of their active,
// uncompleted tasks whose due date has passed
func SendOverdueTaskReminders(database *gorm.DB, cfg *config.Config) {
	log.Println("Starting overdue task reminder job...")

	now := time.Now().UTC()

	var tasks []models.Task
	err := database.Preload("AssignedTo").Preload("Status").
		Where("is_active = ?", true).
		Where("assigned_to_id IS NOT NULL").
		Where("due_date IS NOT NULL AND due_date < ?", now).
		Find(&tasks).Error
	if err != nil {
		log.Printf("Error fetching overdue tasks: %v", err)
		return
	}

	// Group open tasks by assignee
	byUser := map[string][]models.Task{}
	for _, task := range tasks {
		if task.Status.Code == "COMPLETED" || task.AssignedTo == nil || !task.AssignedTo.IsActive {
			continue
		}
		byUser[task.AssignedTo.ID] = append(byUser[task.AssignedTo.ID], task)
	}

	sent := 0
	for _, userTasks := range byUser {
		assignee := userTasks[0].AssignedTo
		titles := make([]string, 0, len(userTasks))
		for _, t := range userTasks {
			titles = append(titles, t.Title)
		}

		email := services.BuildOverdueTasksEmail(cfg, assignee.Email, assignee.Name, titles)
		if err := services.SendEmail(cfg, email); err != nil {
			log.Printf("Error sending overdue reminder to %s: %v", assignee.Email, err)
			continue
		}
		sent++
	}

	log.Printf("Overdue task reminder job finished (%d reminders sent)", sent)
}
