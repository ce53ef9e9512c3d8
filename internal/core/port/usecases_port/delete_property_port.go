package usecases_port

import "context"

type DeletePropertyUseCasePort interface {
	Execute(ctx context.Context, id int64) error
}
