package main

import "errors"

var (
	ErrCouldNotResolvePath = errors.New("could not resolve path")
	ErrOutputPathNotEmpty  = errors.New("the output path already contains content")
	ErrCorruptArchive      = errors.New("could not expand archive")
)
