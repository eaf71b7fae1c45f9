// Package render maps catalog and cart data to page fragments.
//
// Every entry point is a pure function of its arguments, so rendering the
// same data twice yields identical fragments. Rows carry the action the UI
// performs when they are selected; persistent controls such as checkout
// are listed separately and bound once by the UI.
package render
