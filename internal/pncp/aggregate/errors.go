package aggregate

import (
	"fmt"

	"github.com/farxc/pncp_wrapper/internal/pncp/types"
)

// PartitionError means the first page of a partition could not be fetched,
// so nothing is known about the partition at all.
type PartitionError struct {
	Partition types.Partition
	Err       error
}

func (e *PartitionError) Error() string {
	return fmt.Sprintf("partition %s: %v", e.Partition, e.Err)
}

func (e *PartitionError) Unwrap() error {
	return e.Err
}

// PageError aborts a strict walk on a later page.
type PageError struct {
	Partition types.Partition
	Page      int
	Err       error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("partition %s: page %d: %v", e.Partition, e.Page, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
