package bin

import "errors"

var (
	ErrBinNotFound      = errors.New("bin not found")
	ErrBinInactive      = errors.New("bin is inactive")
	ErrDuplicateQRCode  = errors.New("qr code already registered")
	ErrWasteTypeInvalid = errors.New("waste type not accepted by bin")
)
