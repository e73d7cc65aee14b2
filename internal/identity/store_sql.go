package identity

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) CreateStudent(ctx context.Context, st Student) error {
	var code sql.NullString
	var exp sql.NullInt64
	if st.OTPCode != nil {
		code = sql.NullString{String: *st.OTPCode, Valid: true}
	}
	if st.OTPExpiresAt != nil {
		exp = sql.NullInt64{Int64: st.OTPExpiresAt.Unix(), Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (id,name,email,password_hash,dob,phone,address,otp_code,otp_expires_at,created_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		st.ID, st.Name, st.Email, st.PasswordHash,
		st.Profile.DOB, st.Profile.Phone, st.Profile.Address,
		code, exp, st.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *SQLStore) StudentByEmail(ctx context.Context, email string) (Student, error) {
	return s.scanStudent(s.db.QueryRowContext(ctx,
		`SELECT id,name,email,password_hash,dob,phone,address,otp_code,otp_expires_at,created_at
		 FROM students WHERE email=$1`, email))
}

func (s *SQLStore) StudentByID(ctx context.Context, id string) (Student, error) {
	return s.scanStudent(s.db.QueryRowContext(ctx,
		`SELECT id,name,email,password_hash,dob,phone,address,otp_code,otp_expires_at,created_at
		 FROM students WHERE id=$1`, id))
}

func (s *SQLStore) scanStudent(row *sql.Row) (Student, error) {
	var st Student
	var code sql.NullString
	var exp, created sql.NullInt64
	err := row.Scan(&st.ID, &st.Name, &st.Email, &st.PasswordHash,
		&st.Profile.DOB, &st.Profile.Phone, &st.Profile.Address,
		&code, &exp, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Student{}, ErrStudentNotFound
	}
	if err != nil {
		return Student{}, err
	}
	if code.Valid {
		c := code.String
		st.OTPCode = &c
	}
	if exp.Valid {
		t := time.Unix(exp.Int64, 0)
		st.OTPExpiresAt = &t
	}
	if created.Valid {
		st.CreatedAt = time.Unix(created.Int64, 0)
	}
	return st, nil
}

func (s *SQLStore) SetOTP(ctx context.Context, studentID string, code *string, expiresAt *int64) error {
	var c sql.NullString
	var e sql.NullInt64
	if code != nil {
		c = sql.NullString{String: *code, Valid: true}
	}
	if expiresAt != nil {
		e = sql.NullInt64{Int64: *expiresAt, Valid: true}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET otp_code=$1, otp_expires_at=$2 WHERE id=$3`, c, e, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (s *SQLStore) UpdateProfile(ctx context.Context, studentID, name string, p Profile) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE students SET name=$1, dob=$2, phone=$3, address=$4 WHERE id=$5`,
		name, p.DOB, p.Phone, p.Address, studentID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStudentNotFound
	}
	return nil
}

func (s *SQLStore) ListStudentEmails(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT email FROM students ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *SQLStore) CreateAdmin(ctx context.Context, a Admin) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO admins (id,email,password_hash,created_at) VALUES ($1,$2,$3,$4)`,
		a.ID, a.Email, a.PasswordHash, a.CreatedAt.Unix())
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *SQLStore) AdminByEmail(ctx context.Context, email string) (Admin, error) {
	var a Admin
	var created int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id,email,password_hash,created_at FROM admins WHERE email=$1`, email).
		Scan(&a.ID, &a.Email, &a.PasswordHash, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return Admin{}, ErrAdminNotFound
	}
	if err != nil {
		return Admin{}, err
	}
	a.CreatedAt = time.Unix(created, 0)
	return a, nil
}

func (s *SQLStore) SetAdminPassword(ctx context.Context, adminID, passwordHash string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE admins SET password_hash=$1 WHERE id=$2`, passwordHash, adminID)
	return err
}

// isUniqueViolation matches duplicate-key failures from either driver by
// message; neither driver exposes a portable error type for it.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite + postgres wording
		strings.Contains(msg, "sqlstate 23505") // pgx error code
}
