package bind

import "errors"

// ErrUnknownCalc is returned from Add when a directive names a combining
// function that is not present in the configuration's calc registry.
// This is the one fatal, bind-time configuration error; every other missing
// condition (absent path, deleted node) is treated as an undefined value and
// removes the bound attribute or property instead of failing.
var ErrUnknownCalc = errors.New("bind: unknown calc function")

// ErrReentrantReact is returned when a verb is invoked while a reaction is
// still executing, for example from inside a calc function or a patch
// observer. Re-entrant mutation would leave the reaction tables
// inconsistent, so it is detected and refused.
var ErrReentrantReact = errors.New("bind: re-entrant mutation during reaction")
