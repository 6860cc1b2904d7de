package authRepository

const (
	queryCreateUser = `
		INSERT INTO users (id, name, email, password, role, created_at, updated_at)
		VALUES (:id, :name, :email, :password, :role, :created_at, :updated_at)
	`

	queryGetByID = `
		SELECT id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE id = :id
	`

	queryGetByEmail = `
		SELECT id, name, email, password, role, created_at, updated_at
		FROM users
		WHERE email = :email
	`
)
