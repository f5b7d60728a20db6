package errors

import "fmt"

// StoreReadFailed creates a store read failure error
func StoreReadFailed(path string, err error) *WardenError {
	return Wrap(err, ErrCodeStoreRead, fmt.Sprintf("failed to read session store: %s", path)).
		WithDetail("path", path)
}

// StoreWriteFailed creates a store write failure error
func StoreWriteFailed(path string, err error) *WardenError {
	return Wrap(err, ErrCodeStoreWrite, fmt.Sprintf("failed to write session store: %s", path)).
		WithDetail("path", path)
}

// StoreLocked creates a lock acquisition timeout error
func StoreLocked(path string, holder int) *WardenError {
	return New(ErrCodeStoreLocked,
		fmt.Sprintf("session store is locked by another process (pid %d)", holder)).
		WithDetail("path", path).
		WithDetail("holderPid", holder)
}

// HookInvalidArgs creates a malformed hook argument error
func HookInvalidArgs(reason string) *WardenError {
	return New(ErrCodeHookInvalidArgs, fmt.Sprintf("invalid hook arguments: %s", reason))
}

// AdapterScanFailed creates a detection scan failure error
func AdapterScanFailed(agent string, err error) *WardenError {
	return Wrap(err, ErrCodeAdapterScan, fmt.Sprintf("session detection failed for agent '%s'", agent)).
		WithDetail("agent", agent)
}

// ConfigInvalid creates an invalid configuration error
func ConfigInvalid(reason string) *WardenError {
	return New(ErrCodeConfigInvalid, fmt.Sprintf("invalid configuration: %s", reason))
}
