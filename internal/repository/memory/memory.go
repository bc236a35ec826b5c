package memory

import (
	"account_manager/internal/repository"
)

var (
	_ repository.AccountRepository = (*AccountRepository)(nil)
)
