// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

package module

import (
	"errors"

	"github.com/samber/oops"
)

// Error codes for module lifecycle failures.
const (
	CodeDescriptorInvalid        = "DESCRIPTOR_INVALID"
	CodeModuleAlreadyExists      = "MODULE_ALREADY_EXISTS"
	CodeModuleNotFound           = "MODULE_NOT_FOUND"
	CodeModuleAlreadyInstalled   = "MODULE_ALREADY_INSTALLED"
	CodeModuleAlreadyUninstalled = "MODULE_ALREADY_UNINSTALLED"
	CodeModuleProtected          = "MODULE_PROTECTED"
	CodeInstallerMissing         = "INSTALLER_MISSING"
	CodeInstallerIncompatible    = "INSTALLER_INCOMPATIBLE"
	CodeUninstallerMissing       = "UNINSTALLER_MISSING"
	CodeUninstallerIncompatible  = "UNINSTALLER_INCOMPATIBLE"
	CodeProviderMissing          = "PROVIDER_MISSING"
)

// Sentinel errors. Every error returned by this package wraps one of these,
// so callers can match with errors.Is.
var (
	ErrDescriptor               = errors.New("invalid module descriptor")
	ErrModuleAlreadyExists      = errors.New("module already exists")
	ErrModuleDoesNotExist       = errors.New("module does not exist")
	ErrModuleAlreadyInstalled   = errors.New("module already installed")
	ErrModuleAlreadyUninstalled = errors.New("module already uninstalled")
	ErrModuleProtected          = errors.New("module is protected")
	ErrInstallerMissing         = errors.New("installer does not exist")
	ErrInstallerIncompatible    = errors.New("installer is not compatible")
	ErrUninstallerMissing       = errors.New("uninstaller does not exist")
	ErrUninstallerIncompatible  = errors.New("uninstaller is not compatible")
	ErrProviderMissing          = errors.New("provider does not exist")
)

func descriptorError(path string, cause error, format string, args ...any) error {
	b := oops.Code(CodeDescriptorInvalid).With("path", path)
	if cause != nil {
		b = b.With("cause", cause.Error())
	}
	return b.Wrapf(ErrDescriptor, format, args...)
}

func errAlreadyExists(name, path string) error {
	return oops.Code(CodeModuleAlreadyExists).
		With("module", name).
		With("path", path).
		Wrapf(ErrModuleAlreadyExists, "module [%s] already exists", name)
}

func errDoesNotExist(name string) error {
	return oops.Code(CodeModuleNotFound).
		With("module", name).
		Wrapf(ErrModuleDoesNotExist, "module [%s] does not exist", name)
}

func errAlreadyInstalled(name string) error {
	return oops.Code(CodeModuleAlreadyInstalled).
		With("module", name).
		Wrapf(ErrModuleAlreadyInstalled, "module [%s] is already installed", name)
}

func errAlreadyUninstalled(name string) error {
	return oops.Code(CodeModuleAlreadyUninstalled).
		With("module", name).
		Wrapf(ErrModuleAlreadyUninstalled, "module [%s] is already uninstalled", name)
}

func errProtected(name string) error {
	return oops.Code(CodeModuleProtected).
		With("module", name).
		Wrapf(ErrModuleProtected, "module [%s] cannot be uninstalled, because it is protected", name)
}

func errInstallerMissing(name, id string) error {
	return oops.Code(CodeInstallerMissing).
		With("module", name).
		With("installer", id).
		Wrapf(ErrInstallerMissing, "installer [%s] does not exist", id)
}

func errInstallerIncompatible(name, id string) error {
	return oops.Code(CodeInstallerIncompatible).
		With("module", name).
		With("installer", id).
		Wrapf(ErrInstallerIncompatible, "installer [%s] must implement module.Installer", id)
}

func errUninstallerMissing(name, id string) error {
	return oops.Code(CodeUninstallerMissing).
		With("module", name).
		With("uninstaller", id).
		Wrapf(ErrUninstallerMissing, "uninstaller [%s] does not exist", id)
}

func errUninstallerIncompatible(name, id string) error {
	return oops.Code(CodeUninstallerIncompatible).
		With("module", name).
		With("uninstaller", id).
		Wrapf(ErrUninstallerIncompatible, "uninstaller [%s] must implement module.Uninstaller", id)
}

func errProviderMissing(name, id string) error {
	return oops.Code(CodeProviderMissing).
		With("module", name).
		With("provider", id).
		Wrapf(ErrProviderMissing, "provider [%s] does not exist", id)
}
