// pthread.  A share-nothing multithreading library.
// Copyright (C) 2019-2025  Yuan Gao
//
// This file is part of pthread.
//
// pthread is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package errors

import stderrors "errors"

// ErrCapacity indicates that a non-positive capacity was passed where
// a capacity of at least 1 is required (channel or broadcast). A
// non-positive pool queue capacity or parallel bridge setting is not
// an error: it is replaced by a default.
var ErrCapacity = stderrors.New("capacity must be at least 1")

// ErrAlloc indicates that the backing buffer for a channel could not
// be allocated. Reserved for the Try* constructors: on ordinary
// hardware make() for a bounded ring buffer does not fail, but the
// Try* path still plumbs this error so a caller exercising failure
// handling does not have to catch a runtime panic instead.
var ErrAlloc = stderrors.New("failed to allocate channel buffer")

// ErrPoolClosed indicates that a job was submitted to a ThreadPool
// after it was closed.
var ErrPoolClosed = stderrors.New("thread pool is closed")

// ErrJoin indicates a join-related contract violation or failure:
// Thread.TryJoin called a second time, or the spawned function
// panicked and the panic value is being surfaced to the joiner
// instead of being repropagated directly.
var ErrJoin = stderrors.New("thread join failed")
