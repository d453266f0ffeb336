// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// Copyright (c) 2018 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package irc

import "errors"

// Runtime errors
var (
	errStringIsEmpty      = errors.New("String is empty")
	errNameTooLong        = errors.New("Name is too long")
	errInvalidCharacter   = errors.New("Invalid character")
	errInvalidChannelName = errors.New("Invalid channel name")
	errBadPort            = errors.New("Port must be a number 1025-65535")
	errEmptyPassword      = errors.New("Password must not be empty")
	errBanMaskDuplicate   = errors.New("Ban mask is already present")
	errSendQExceeded      = errors.New("SendQ exceeded")
	errSocketClosed       = errors.New("Socket is closed")
	errReadQExceeded      = errors.New("ReadQ exceeded")
)
