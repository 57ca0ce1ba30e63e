// Package activationcode parses and validates the activation codes users
// type in (or scan from a QR code) to enroll a device: strings of the form
// "XXXXX-XXXXX-XXXXX-XXXXX", four groups of five RFC4648 base32 characters
// (alphabet A-Z2-7, no padding), where the last character of the fourth
// group is a checksum over the preceding nineteen.
package activationcode
