package photoRepository

const (
	queryCreatePhoto = `
INSERT INTO photos (
    id, filename, original_name, path, mime_type, size, project_id, user_id,
    has_closed_eyes, not_looking_at_camera, not_looking_path, is_group_photo, groups_path,
    is_blurry, blur_score, is_centered, center_distance, created_at, updated_at
) VALUES (
    :id, :filename, :original_name, :path, :mime_type, :size, :project_id, :user_id,
    :has_closed_eyes, :not_looking_at_camera, :not_looking_path, :is_group_photo, :groups_path,
    :is_blurry, :blur_score, :is_centered, :center_distance, :created_at, :updated_at
)`

	photoColumns = `
SELECT id, filename, original_name, path, mime_type, size, project_id, user_id,
       has_closed_eyes, not_looking_at_camera, not_looking_path, is_group_photo, groups_path,
       is_blurry, blur_score, is_centered, center_distance, created_at, updated_at
FROM photos`

	queryGetPhotoByID = photoColumns + `
    WHERE id = :id`

	queryDeletePhoto = `
DELETE FROM photos
WHERE id = :id`

	queryDeletePhotosByProject = `
DELETE FROM photos
WHERE project_id = :project_id`

	queryDeletePhotosByUser = `
DELETE FROM photos
WHERE user_id = :user_id`
)
