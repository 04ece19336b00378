package projectRepository

const (
	queryCreateProject = `
INSERT INTO projects (id, name, type, user_id, created_at, updated_at)
VALUES (:id, :name, :type, :user_id, :created_at, :updated_at)`

	queryGetProjectByID = `
SELECT id, name, type, user_id, created_at, updated_at
FROM projects
    WHERE id = :id`

	queryListProjectsByUser = `
SELECT id, name, type, user_id, created_at, updated_at
FROM projects
    WHERE user_id = :user_id
ORDER BY created_at DESC`

	queryUpdateProject = `
UPDATE projects
SET name = :name,
    type = :type,
    updated_at = :updated_at
WHERE id = :id`

	queryDeleteProject = `
DELETE FROM projects
WHERE id = :id`
)
