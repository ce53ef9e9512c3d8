package usecases_port

import "context"

type DeleteValuationUseCasePort interface {
	Execute(ctx context.Context, id int64) error
}
