// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the blog command line using Cobra. It loads the
// configuration, opens the store and hands off to the internal packages;
// business logic stays out of this package.
package cli
