package integration_tests

import (
	"context"
	"fmt"

	"tokenfolio/internal/domain"
)

type recordingSubmitter struct {
	address   string
	submitted []domain.UnsignedTx
}

func (s *recordingSubmitter) Address() string {
	return s.address
}

func (s *recordingSubmitter) SubmitTransaction(ctx context.Context, tx domain.UnsignedTx) (string, error) {
	s.submitted = append(s.submitted, tx)
	return fmt.Sprintf("0xhash%d", len(s.submitted)), nil
}
