//go:generate mockgen -source=../order_store.go   -destination=./mock_order_store.go   -package=mocks
//go:generate mockgen -source=../order_cache.go   -destination=./mock_order_cache.go   -package=mocks
//go:generate mockgen -source=../order_service.go -destination=./mock_order_service.go -package=mocks
//go:generate mockgen -source=../validator.go     -destination=./mock_validator.go     -package=mocks

package mocks
