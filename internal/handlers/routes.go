package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes подключает API к роутеру; adminOnly оборачивает операции администратора
func RegisterRoutes(r chi.Router, tasks *TaskHandler, projects *ProjectHandler, users *UserHandler, adminOnly func(http.Handler) http.Handler) {
	r.Get("/me", users.Me) // GET /api/me

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.FindUsers)       // GET /api/users
		r.Get("/{id}", users.GetUserByID) // GET /api/users/{id}
	})

	r.Route("/projects", func(r chi.Router) {
		r.Post("/", projects.PostProject) // POST /api/projects
		r.Get("/", projects.GetProjects)  // GET /api/projects

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", projects.GetProjectByID)    // GET /api/projects/{id}
			r.Post("/tasks", tasks.PostTask)       // POST /api/projects/{id}/tasks
			r.Get("/tasks", tasks.GetProjectTasks) // GET /api/projects/{id}/tasks
		})
	})

	r.Route("/tasks/{id}", func(r chi.Router) {
		r.Get("/", tasks.GetTaskByID)                       // GET /api/tasks/{id}
		r.Put("/", tasks.UpdateTaskByID)                    // PUT /api/tasks/{id}
		r.With(adminOnly).Delete("/", tasks.DeleteTaskByID) // DELETE /api/tasks/{id}
	})
}
