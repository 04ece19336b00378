package authRepository

const (
	queryCreateUser = `
INSERT INTO users (id, email, password, name, is_active, created_at, updated_at)
VALUES (:id, :email, :password, :name, :is_active, :created_at, :updated_at)`

	queryGetByID = `
SELECT id, email, password, name, avatar, is_active, verified_at, created_at, updated_at
FROM users
    WHERE id = :id`

	queryGetByEmail = `
SELECT id, email, password, name, avatar, is_active, verified_at, created_at, updated_at
FROM users
    WHERE LOWER(email) = LOWER(:email)`

	queryUpdateProfile = `
UPDATE users
SET name = :name,
    avatar = :avatar,
    updated_at = :updated_at
WHERE id = :id`

	queryUpdatePassword = `
UPDATE users
SET password = :password,
    updated_at = :updated_at
WHERE id = :id`

	queryMarkVerified = `
UPDATE users
SET verified_at = :verified_at,
    updated_at = :updated_at
WHERE id = :id`

	queryDeleteUser = `
DELETE FROM users
WHERE id = :id`
)
