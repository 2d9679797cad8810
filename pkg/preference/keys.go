package preference

import (
	"fmt"
	"sort"
)

// ComputeKey names a setting that applies to a compute resource.
type ComputeKey string

const (
	ComputeLoginUserName                  ComputeKey = "loginUserName"
	ComputePreferredBatchQueue            ComputeKey = "preferredBatchQueue"
	ComputeScratchLocation                ComputeKey = "scratchLocation"
	ComputeAllocationProjectNumber        ComputeKey = "allocationProjectNumber"
	ComputeResourceCredentialStoreToken   ComputeKey = "resourceSpecificCredentialStoreToken"
	ComputeUsageReportingGatewayID        ComputeKey = "usageReportingGatewayId"
	ComputeQualityOfService               ComputeKey = "qualityOfService"
	ComputeReservation                    ComputeKey = "reservation"
	ComputeReservationStartTime           ComputeKey = "reservationStartTime"
	ComputeReservationEndTime             ComputeKey = "reservationEndTime"
	ComputeSSHAccountProvisioner          ComputeKey = "sshAccountProvisioner"
	ComputePreferredJobSubmissionProtocol ComputeKey = "preferredJobSubmissionProtocol"
	ComputePreferredDataMovementProtocol  ComputeKey = "preferredDataMovementProtocol"
	ComputeMaxWallTime                    ComputeKey = "maxWallTime"
	ComputeMaxNodeCount                   ComputeKey = "maxNodeCount"
	ComputeMaxCPUCount                    ComputeKey = "maxCpuCount"
	ComputeMaxMemory                      ComputeKey = "maxMemory"
)

// StorageKey names a setting that applies to a storage resource.
type StorageKey string

const (
	StorageLoginUserName                StorageKey = "loginUserName"
	StorageFileSystemRootLocation       StorageKey = "fileSystemRootLocation"
	StorageResourceCredentialStoreToken StorageKey = "resourceSpecificCredentialStoreToken"
	StorageMaxQuota                     StorageKey = "maxStorageQuota"
)

// ComputeKeys lists every known compute key.
var ComputeKeys = []ComputeKey{
	ComputeLoginUserName,
	ComputePreferredBatchQueue,
	ComputeScratchLocation,
	ComputeAllocationProjectNumber,
	ComputeResourceCredentialStoreToken,
	ComputeUsageReportingGatewayID,
	ComputeQualityOfService,
	ComputeReservation,
	ComputeReservationStartTime,
	ComputeReservationEndTime,
	ComputeSSHAccountProvisioner,
	ComputePreferredJobSubmissionProtocol,
	ComputePreferredDataMovementProtocol,
	ComputeMaxWallTime,
	ComputeMaxNodeCount,
	ComputeMaxCPUCount,
	ComputeMaxMemory,
}

// StorageKeys lists every known storage key.
var StorageKeys = []StorageKey{
	StorageLoginUserName,
	StorageFileSystemRootLocation,
	StorageResourceCredentialStoreToken,
	StorageMaxQuota,
}

// UnknownKeyError is returned by ValidateKey for keys outside a resource
// type's key set.
type UnknownKeyError struct {
	ResourceType ResourceType
	Key          string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown %s preference key %q", e.ResourceType, e.Key)
}

// KeysFor returns the sorted key names valid for a resource type.
func KeysFor(rt ResourceType) []string {
	var keys []string
	switch rt {
	case ResourceTypeCompute:
		for _, k := range ComputeKeys {
			keys = append(keys, string(k))
		}
	case ResourceTypeStorage:
		for _, k := range StorageKeys {
			keys = append(keys, string(k))
		}
	}
	sort.Strings(keys)
	return keys
}

// ValidateKey checks that key belongs to the key set of rt.
func ValidateKey(rt ResourceType, key string) error {
	switch rt {
	case ResourceTypeCompute:
		for _, k := range ComputeKeys {
			if string(k) == key {
				return nil
			}
		}
	case ResourceTypeStorage:
		for _, k := range StorageKeys {
			if string(k) == key {
				return nil
			}
		}
	}
	return &UnknownKeyError{ResourceType: rt, Key: key}
}
