package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Ledger --dir ../domain/settlement --output domain/settlement --outpkg settlementmock --filename ledger_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/contest --output domain/contest --outpkg contestmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/match --output domain/match --outpkg matchmock --filename repository_mock.go
