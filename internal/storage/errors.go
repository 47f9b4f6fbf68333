package storage

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// IsUniqueViolation сообщает, вызвана ли ошибка нарушением уникального
// ограничения (duplicate key). Сервисный слой переводит её в доменную
// ошибку вида "слаг занят" или "адрес уже подписан".
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
