package memory

import (
	"pixbank/internal/repository"
)

var (
	_ repository.AccountRepository = (*AccountRepository)(nil)
)
