package mocks

//go:generate mockgen -destination=./mock_fetcher.go -package=mocks github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/fetcher ObjectFetcher
//go:generate mockgen -destination=./mock_writer.go -package=mocks github.com/rxtech-lab/polygon-flatfiles/pkg/flatfiles/writer TableWriter
